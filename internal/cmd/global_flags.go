package cmd

import "strings"

// globalFlags contains global config values that apply for all retrace
// sub-commands.
type globalFlags struct {
	Quiet     bool
	NoColor   bool
	Address   string
	LogOutput string
	LogFormat string
	Verbose   bool
}

func getDefaultGlobalFlags() globalFlags {
	return globalFlags{
		Address:   "localhost:6565",
		LogOutput: "stderr",
	}
}

func consolidateGlobalFlags(defaultFlags globalFlags, env map[string]string) globalFlags {
	result := defaultFlags

	if val, ok := env["RETRACE_LOG_OUTPUT"]; ok {
		result.LogOutput = val
	}
	if val, ok := env["RETRACE_LOG_FORMAT"]; ok {
		result.LogFormat = val
	}
	if env["RETRACE_NO_COLOR"] != "" {
		result.NoColor = true
	}
	// Support https://no-color.org/, even an empty value should disable the
	// color output from retrace.
	if _, ok := env["NO_COLOR"]; ok {
		result.NoColor = true
	}
	return result
}

// buildEnvMap returns a map from the os.Environ() list form.
func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}
