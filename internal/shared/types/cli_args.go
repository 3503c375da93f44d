package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile     string
	EnvFile        string
	Marketplace    string
	Backend        string
	RefreshSeconds *int
	LookbackDays   *int
	Timezone       string

	// report
	Metric     string
	Days       int
	ReportName string
	ReportType []string
	Dir        string

	// portal
	PortalAddr string
}
