package constants

// Static route constants
const (
	APIRoute     = "/api"
	APIV1Route   = "/v1"
	DocsRoute    = "/docs/api/"
	OpenAPIFile  = "./public/docs/v1/openapi.yml"
	MetricsRoute = "/metrics"
	MonitorRoute = "/monitor"
	HealthRoute  = "/healthz"
)
