package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/rtt/internal/utils"
)

const (
	toggleFlagTypeName        = "bool"
	toggleFlagTrueLiteral     = "true"
	toggleFlagAcceptedValues  = "true, false, yes, no, on, off, 1, 0"
	errorToggleValueFormat    = "invalid boolean value %q for --%s; accepted values: %s"
	toggleFlagArgumentsPrefix = "--"
	toggleFlagAssignment      = "="
)

var toggleFlagLiterals = map[string]bool{
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

// toggleFlagValue is a boolean flag that also accepts yes/no and on/off,
// written either as --flag=value or as --flag value.
type toggleFlagValue struct {
	target   *bool
	flagName string
}

func (value *toggleFlagValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleFlagTrueLiteral
	}
	parsed, known := toggleFlagLiterals[normalized]
	if !known {
		return fmt.Errorf(errorToggleValueFormat, input, value.flagName, toggleFlagAcceptedValues)
	}
	*value.target = parsed
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleFlagValue) Type() string {
	return toggleFlagTypeName
}

func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, usage string) {
	*target = false
	flagSet.Var(&toggleFlagValue{target: target, flagName: name}, name, usage)
	if registered := flagSet.Lookup(name); registered != nil {
		registered.NoOptDefVal = toggleFlagTrueLiteral
	}
}

// normalizeToggleArguments rewrites "--flag value" into "--flag=value" for
// toggle flags followed by a boolean literal, so that the literal is not taken
// as the source argument.
func normalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	collectToggleFlagNames(command, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == toggleFlagArgumentsPrefix {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, toggleFlagArgumentsPrefix)
		if isLongFlag && !strings.Contains(flagName, toggleFlagAssignment) && index+1 < len(arguments) {
			if _, isToggle := toggleNames[flagName]; isToggle {
				literal := strings.ToLower(strings.TrimSpace(arguments[index+1]))
				if _, isLiteral := toggleFlagLiterals[literal]; isLiteral {
					normalized = append(normalized, currentArgument+toggleFlagAssignment+arguments[index+1])
					index++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectToggleFlagNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil {
		return
	}
	visit := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleFlagValue); isToggle {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectToggleFlagNames(child, target)
	}
}

// registerPatternFlag registers a repeatable list flag. Each occurrence may
// carry a comma separated list.
func registerPatternFlag(flagSet *pflag.FlagSet, target *[]string, name string, shorthand string, usage string) {
	flagSet.StringArrayVarP(target, name, shorthand, nil, usage)
}

// resolvePatterns returns the flag patterns when the flag was given on the
// command line and the configured patterns otherwise.
func resolvePatterns(flagSet *pflag.FlagSet, name string, flagPatterns []string, configuredPatterns []string) []string {
	if flagSet.Changed(name) {
		return utils.SplitPatternList(flagPatterns)
	}
	return utils.DeduplicatePatterns(configuredPatterns)
}
