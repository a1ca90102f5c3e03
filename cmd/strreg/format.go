package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *AnalyzeResponseCLI:
		return formatAnalyzeHuman(v), nil
	default:
		return formatJSON(resp)
	}
}

func formatAnalyzeHuman(resp *AnalyzeResponseCLI) string {
	p := resp.Properties
	var b strings.Builder

	fmt.Fprintf(&b, "Value:             %q\n", resp.Value)
	fmt.Fprintf(&b, "Length:            %d\n", p.Length)
	fmt.Fprintf(&b, "Palindrome:        %t\n", p.IsPalindrome)
	fmt.Fprintf(&b, "Unique characters: %d\n", p.UniqueCharacters)
	fmt.Fprintf(&b, "Words:             %d\n", p.WordCount)
	fmt.Fprintf(&b, "SHA-256:           %s\n", p.SHA256Hash)
	b.WriteString("Frequencies:      ")

	chars := make([]string, 0, len(p.CharacterFrequencyMap))
	for c := range p.CharacterFrequencyMap {
		chars = append(chars, c)
	}
	sort.Strings(chars)
	for _, c := range chars {
		fmt.Fprintf(&b, " %q=%d", c, p.CharacterFrequencyMap[c])
	}
	return b.String()
}
