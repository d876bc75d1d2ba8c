package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create flows table
			CREATE TABLE flows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'active', 'archived')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_flows_status ON flows(status);
			CREATE INDEX idx_flows_created_at ON flows(created_at);
			CREATE INDEX idx_flows_name ON flows(name);

			-- Create flow_versions table. Rows are append only: the
			-- application never updates or deletes a version, and the
			-- unique (flow_id, sequence) pair keeps concurrent saves
			-- from ever sharing a slot.
			CREATE TABLE flow_versions (
				id UUID PRIMARY KEY,
				flow_id UUID NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
				sequence BIGINT NOT NULL CHECK (sequence >= 1),
				definition JSONB NOT NULL,
				viewport JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (flow_id, sequence)
			);

			CREATE INDEX idx_flow_versions_flow_id ON flow_versions(flow_id);
			CREATE INDEX idx_flow_versions_created_at ON flow_versions(created_at);
		`,
	}
}
