package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleTypeName         = "bool"
	toggleImpliedValue     = "true"
	toggleAcceptedLiterals = "true, false, yes, no, on, off, 1, 0"
	toggleInvalidFormat    = "invalid boolean value %q for --%s; accepted values: %s"
	longFlagPrefix         = "--"
	argumentTerminator     = "--"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// parseToggle reads a boolean literal; an empty value means true.
func parseToggle(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleImpliedValue
	}
	parsed, known := toggleLiterals[normalized]
	return parsed, known
}

// toggleValue is a pflag.Value accepting the literals above, so that
// "--flat=no" and "--flat off" both work.
type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	parsed, known := parseToggle(input)
	if !known || value.target == nil {
		return fmt.Errorf(toggleInvalidFormat, input, value.name, toggleAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleTypeName
}

// registerToggle adds a boolean flag with an optional one-letter shorthand.
func registerToggle(flagSet *pflag.FlagSet, target *bool, name, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.VarP(&toggleValue{target: target, name: name}, name, shorthand, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleImpliedValue
}

// joinToggleValues rewrites "--name literal" into "--name=literal" for the
// boolean flags of command and its subcommands. Shorthands are left alone so
// that "-l out" keeps out as a positional argument.
func joinToggleValues(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	toggles := map[string]struct{}{}
	collectToggleNames(command, toggles)
	if len(toggles) == 0 {
		return arguments
	}
	joined := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			return append(joined, arguments[index:]...)
		}
		name, isLong := strings.CutPrefix(argument, longFlagPrefix)
		_, isToggle := toggles[name]
		if isLong && isToggle && !strings.Contains(name, "=") && index+1 < len(arguments) {
			next := arguments[index+1]
			if _, known := toggleLiterals[strings.ToLower(strings.TrimSpace(next))]; known && !strings.HasPrefix(next, "-") {
				joined = append(joined, longFlagPrefix+name+"="+next)
				index++
				continue
			}
		}
		joined = append(joined, argument)
	}
	return joined
}

func collectToggleNames(command *cobra.Command, target map[string]struct{}) {
	record := func(flag *pflag.Flag) {
		if flag.Value != nil && flag.Value.Type() == toggleTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectToggleNames(child, target)
	}
}
