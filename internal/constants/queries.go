package constants

// Statement names
const (
	StmtGetCredential    = "get_credential"
	StmtInsertCredential = "insert_credential"
	StmtDeleteCredential = "delete_credential"
	StmtCountCredentials = "count_credentials"

	StmtInsertAuditEvent = "insert_audit_event"
	StmtGetAuditHistory  = "get_audit_history"
)

var Queries = map[string]string{
	StmtGetCredential: `
		SELECT id, token_hash, client_name, created_at
		FROM api_keys
		WHERE token_hash = $1`,

	// The unique index on token_hash turns a duplicate into zero affected rows.
	StmtInsertCredential: `
		INSERT INTO api_keys (id, token_hash, client_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (token_hash) DO NOTHING`,

	StmtDeleteCredential: `
		DELETE FROM api_keys WHERE token_hash = $1`,

	StmtCountCredentials: `
		SELECT COUNT(*) FROM api_keys`,

	StmtInsertAuditEvent: `
		INSERT INTO audit_events (id, client_identity, operation, success, error_message, request_metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,

	StmtGetAuditHistory: `
		SELECT id, client_identity, operation, success, error_message, request_metadata, timestamp
		FROM audit_events
		WHERE client_identity = $1
		ORDER BY timestamp DESC
		LIMIT $2`,
}
