package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE node_types (
				type_id VARCHAR(255) PRIMARY KEY,
				display_name VARCHAR(255) NOT NULL,
				category VARCHAR(50) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				version INT NOT NULL DEFAULT 1,
				deprecated BOOLEAN NOT NULL DEFAULT false,
				replaced_by VARCHAR(255) NOT NULL DEFAULT '',
				keywords JSONB NOT NULL DEFAULT '[]',
				parameter_schema JSONB NOT NULL DEFAULT '[]',
				sort_order INT NOT NULL DEFAULT 0
			);

			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				owner_id VARCHAR(255) NOT NULL,
				conversation_id VARCHAR(255),
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				document JSONB NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('draft', 'deployed', 'active')),
				is_public BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_owner_id ON workflows(owner_id);
			CREATE INDEX idx_workflows_is_public ON workflows(is_public);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
		`,
		2: `
			CREATE TABLE workflow_templates (
				id UUID PRIMARY KEY,
				owner_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				document JSONB NOT NULL,
				category VARCHAR(100) NOT NULL,
				tags JSONB NOT NULL DEFAULT '[]',
				use_case TEXT NOT NULL DEFAULT '',
				difficulty VARCHAR(50) NOT NULL DEFAULT '',
				is_public BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_templates_owner_id ON workflow_templates(owner_id);
			CREATE INDEX idx_workflow_templates_category ON workflow_templates(category);
		`,
	}
}
