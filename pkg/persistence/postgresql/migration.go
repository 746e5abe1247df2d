package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE runs (
				id VARCHAR(255) PRIMARY KEY,
				workflow VARCHAR(100) NOT NULL,
				input TEXT NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('pending', 'running', 'completed', 'failed', 'cancelled')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				report JSONB NOT NULL
			);

			CREATE INDEX idx_runs_workflow ON runs(workflow);
			CREATE INDEX idx_runs_status ON runs(status);
			CREATE INDEX idx_runs_created_at ON runs(created_at);
		`,
		2: `
			-- scheduler looks runs up by transcript path
			CREATE INDEX idx_runs_input ON runs(input);
		`,
	}
}
