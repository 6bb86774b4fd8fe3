package http

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type RootResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status                    string `json:"status"`
	ClientInitialized         bool   `json:"client_initialized"`
	ProviderCredentialPresent bool   `json:"provider_credential_present"`
}

type BrainstormRequest struct {
	Query string `json:"query"`
}

type BrainstormResponse struct {
	Response string `json:"response"`
}

type TestResponse struct {
	Question string `json:"question"`
	Response string `json:"response"`
	Model    string `json:"model"`
}

type GenerateKeyResponse struct {
	APIKey     string `json:"api_key"`
	ClientName string `json:"client_name"`
}

type RevokeKeyRequest struct {
	APIKey string `json:"api_key"`
}
