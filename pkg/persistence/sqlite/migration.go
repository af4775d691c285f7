package sqlite

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE node_types (
				type_id TEXT PRIMARY KEY,
				display_name TEXT NOT NULL,
				category TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				version INTEGER NOT NULL DEFAULT 1,
				deprecated BOOLEAN NOT NULL DEFAULT 0,
				replaced_by TEXT NOT NULL DEFAULT '',
				keywords TEXT NOT NULL DEFAULT '[]',
				parameter_schema TEXT NOT NULL DEFAULT '[]',
				sort_order INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE workflows (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				conversation_id TEXT,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				document TEXT NOT NULL,
				status TEXT NOT NULL CHECK (status IN ('draft', 'deployed', 'active')),
				is_public BOOLEAN NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			CREATE INDEX idx_workflows_owner_id ON workflows(owner_id);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
		`,
		2: `
			CREATE TABLE workflow_templates (
				id TEXT PRIMARY KEY,
				owner_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				document TEXT NOT NULL,
				category TEXT NOT NULL,
				tags TEXT NOT NULL DEFAULT '[]',
				use_case TEXT NOT NULL DEFAULT '',
				difficulty TEXT NOT NULL DEFAULT '',
				is_public BOOLEAN NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL
			);

			CREATE INDEX idx_workflow_templates_owner_id ON workflow_templates(owner_id);
		`,
	}
}
