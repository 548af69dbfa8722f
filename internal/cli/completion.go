package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/magcalc/internal/config"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// Every generator reads flagRegistry, so a new flag only needs an entry
// there.
type FlagCompletion struct {
	Long      string   // long flag name without dashes
	Short     string   // short flag name without the dash
	Help      string   // description text
	Values    []string // suggested values (nil = boolean or free-form)
	ValueName string   // label for the value in zsh
	IsFile    bool     // the flag takes a file path
	IsOp      bool     // values come from the operation list
}

// flagRegistry is the list of CLI flags offered by completion scripts.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "mode", Help: "Execution mode", Values: config.Modes, ValueName: "mode"},
	{Long: "op", Help: "Operation for eval mode", IsOp: true, ValueName: "operation"},
	{Long: "karatsuba-threshold", Help: "Karatsuba threshold in words", Values: []string{"0", "32", "48", "64", "80", "96", "128"}, ValueName: "words"},
	{Long: "memory-limit", Help: "Allocator limit", Values: []string{"64MB", "256MB", "1GiB", "4GiB"}, ValueName: "size"},
	{Long: "timeout", Help: "Maximum execution time", Values: []string{"10s", "1m", "5m", "30m"}, ValueName: "duration"},
	{Long: "workers", Help: "Concurrent executions in batch mode", ValueName: "count"},
	{Long: "batch", Help: "YAML job file", IsFile: true, ValueName: "file"},
	{Long: "verify", Help: "Cross-check results against math/big"},
	{Long: "addr", Help: "Listen address for serve mode", ValueName: "address"},
	{Long: "hex", Help: "Print results in hexadecimal"},
	{Long: "output", Short: "o", Help: "Output file path", IsFile: true, ValueName: "file"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "verbose", Short: "v", Help: "Full values and allocator statistics"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "calibration-profile", Help: "Calibration profile file", IsFile: true, ValueName: "file"},
	{Long: "gc-mode", Help: "Garbage collector control during batch runs", Values: config.GCModes, ValueName: "mode"},
	{Long: "log-level", Help: "Log level", Values: []string{"debug", "info", "warn", "error"}, ValueName: "level"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish", "powershell"}, ValueName: "shell"},
}

// GenerateCompletion writes a completion script for shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish", "powershell").
//   - operations: The operation names offered for --op.
//
// Returns:
//   - error: An error if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string, operations []string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, operations)
	case "zsh":
		return generateZshCompletion(out, operations)
	case "fish":
		return generateFishCompletion(out, operations)
	case "powershell", "ps":
		return generatePowerShellCompletion(out, operations)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: bash, zsh, fish, powershell)", shell)
	}
}

// flagNames returns the dashed spellings of f.
func flagNames(f FlagCompletion) []string {
	var names []string
	if f.Long != "" {
		names = append(names, "--"+f.Long)
	}
	if f.Short != "" {
		names = append(names, "-"+f.Short)
	}
	return names
}

func generateBashCompletion(out io.Writer, operations []string) error {
	var opts []string
	for _, f := range flagRegistry {
		opts = append(opts, flagNames(f)...)
	}

	var cases strings.Builder
	writeCase := func(patterns []string, body string) {
		fmt.Fprintf(&cases, "        %s)\n            %s\n            return 0\n            ;;\n", strings.Join(patterns, "|"), body)
	}
	var filePatterns []string
	for _, f := range flagRegistry {
		switch {
		case f.IsOp:
			writeCase(flagNames(f), `COMPREPLY=( $(compgen -W "${operations}" -- "${cur}") )`)
		case f.IsFile:
			filePatterns = append(filePatterns, flagNames(f)...)
		case len(f.Values) > 0:
			writeCase(flagNames(f), fmt.Sprintf(`COMPREPLY=( $(compgen -W "%s" -- "${cur}") )`, strings.Join(f.Values, " ")))
		}
	}
	if len(filePatterns) > 0 {
		writeCase(filePatterns, `COMPREPLY=( $(compgen -f -- "${cur}") )`)
	}

	_, err := fmt.Fprintf(out, `# Bash completion script for magcalc
# Add this to your ~/.bashrc or ~/.bash_completion

_magcalc_completions() {
    local cur prev opts operations
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"
    operations="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _magcalc_completions magcalc
`, strings.Join(opts, " "), strings.Join(operations, " "), cases.String())
	if err != nil {
		return fmt.Errorf("completion bash generation failed: %w", err)
	}
	return nil
}

func generateZshCompletion(out io.Writer, operations []string) error {
	var args []string
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}

	_, err := fmt.Fprintf(out, `#compdef magcalc

# Zsh completion script for magcalc
# Add this to your ~/.zshrc or place in $fpath

_magcalc() {
    local -a operations
    operations=(%s)

    _arguments -s \
%s
}

_magcalc "$@"
`, strings.Join(operations, " "), strings.Join(args, " \\\n"))
	if err != nil {
		return fmt.Errorf("completion zsh generation failed: %w", err)
	}
	return nil
}

// zshArgEntry formats f as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	switch {
	case f.IsFile:
		valueSuffix = fmt.Sprintf(":%s:_files", f.ValueName)
	case f.IsOp:
		valueSuffix = fmt.Sprintf(":%s:($operations)", f.ValueName)
	case len(f.Values) > 0:
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(f.Values, " "))
	case f.ValueName != "":
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Long != "" && f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

func generateFishCompletion(out io.Writer, operations []string) error {
	lines := []string{
		"# Fish completion script for magcalc",
		"# Add this to ~/.config/fish/completions/magcalc.fish",
		"",
		"# Disable file completion by default",
		"complete -c magcalc -f",
		"",
	}
	opList := strings.Join(operations, " ")
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f, opList))
	}
	lines = append(lines, "")

	_, err := fmt.Fprint(out, strings.Join(lines, "\n"))
	if err != nil {
		return fmt.Errorf("completion fish generation failed: %w", err)
	}
	return nil
}

// fishCompleteLine formats f as a fish complete command.
func fishCompleteLine(f FlagCompletion, opList string) string {
	parts := []string{"complete -c magcalc"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	if f.Long != "" {
		parts = append(parts, "-l "+f.Long)
	}
	parts = append(parts, fmt.Sprintf("-d '%s'", f.Help))

	switch {
	case f.IsFile:
		parts = append(parts, "-rF")
	case f.IsOp:
		parts = append(parts, fmt.Sprintf("-xa '%s'", opList))
	case len(f.Values) > 0:
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(f.Values, " ")))
	case f.ValueName != "":
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}

func generatePowerShellCompletion(out io.Writer, operations []string) error {
	var optionEntries []string
	for _, f := range flagRegistry {
		for _, name := range flagNames(f) {
			optionEntries = append(optionEntries, fmt.Sprintf(
				"        @{Name = '%s'; Description = '%s' }", name, f.Help))
		}
	}

	quote := func(vals []string) string {
		quoted := make([]string, len(vals))
		for i, v := range vals {
			quoted[i] = "'" + v + "'"
		}
		return strings.Join(quoted, ", ")
	}

	var switchEntries []string
	for _, f := range flagRegistry {
		var source string
		switch {
		case f.IsOp:
			source = "$magcalcOperations"
		case !f.IsFile && len(f.Values) > 0:
			source = "@(" + quote(f.Values) + ")"
		default:
			continue
		}
		switchEntries = append(switchEntries, fmt.Sprintf(`        '--%s' {
            %s | Where-Object { $_ -like "$wordToComplete*" } | ForEach-Object {
                [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)
            }
            return
        }`, f.Long, source))
	}

	_, err := fmt.Fprintf(out, `# PowerShell completion script for magcalc
# Add this to your $PROFILE

$magcalcOperations = @(%s)

Register-ArgumentCompleter -CommandName 'magcalc' -Native -ScriptBlock {
    param($wordToComplete, $commandAst, $cursorPosition)

    $options = @(
%s
    )

    $elements = $commandAst.CommandElements
    $prevElement = if ($elements.Count -gt 2) { $elements[-2].ToString() } else { '' }

    switch ($prevElement) {
%s
    }

    $options | Where-Object { $_.Name -like "$wordToComplete*" } | ForEach-Object {
        [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Description)
    }
}
`, quote(operations), strings.Join(optionEntries, "\n"), strings.Join(switchEntries, "\n"))
	if err != nil {
		return fmt.Errorf("completion powershell generation failed: %w", err)
	}
	return nil
}
