package fuzztests

import "testing"

const maxFuzzInput = 1 << 16 // 64 KiB

var directiveSeeds = []string{
	"@SuppressWarnings('UnusedImport')",
	"    @SuppressWarnings(['A','B'])",
	"\t@SuppressWarnings([\"A\", \"B\"])",
	"@SuppressWarnings([A, B.c, d-1])",
	"@SuppressWarnings",
	"@SuppressWarningsFoo('A')",
	"@SuppressWarnings((['A'",
	"class X { @SuppressWarnings('A') def y() {} }",
	"@SuppressWarnings(value = ['A']) def z = 1",
	"println '@SuppressWarnings is neat'",
	"",
}

var codeSeeds = []string{
	"UnusedImport-0",
	"Rule-With-Dashes-12",
	"NoOccurrence",
	"-3",
	"Rule-",
	"Rule-99999999999999999999",
}

var sarifSeeds = []string{
	`{"version":"2.1.0","runs":[]}`,
	`{"version":"2.1.0","runs":[{"tool":{"driver":{"name":"x"}},"results":[
		{"ruleId":"A","level":"warning","message":{"text":"m"},
		 "locations":[{"physicalLocation":{"region":{"startLine":1,"startColumn":1,"endColumn":3}}}],
		 "fixes":[{"description":{"text":"fix"},"artifactChanges":[{"artifactLocation":{"uri":"f"},
		   "replacements":[{"deletedRegion":{"startLine":1,"startColumn":1,"endColumn":3},"insertedContent":{"text":"z"}}]}]}]}]}]}`,
	`{"version":"2.1.0","runs":[{"tool":{"driver":{"name":"x","rules":[{"id":"R"}]}},"results":[
		{"ruleIndex":0,"level":"note","message":{"text":"m"},
		 "locations":[{"physicalLocation":{"region":{"byteOffset":2,"byteLength":1}}}]}]}]}`,
	`{"runs":[{"results":[{"message":{}}]}]}`,
	`not json`,
}

var textSeeds = []string{
	"abc\ndef\n",
	"",
	"日本語\n𝄞\n",
}

func clampInput(s string) string {
	if len(s) > maxFuzzInput {
		return s[:maxFuzzInput]
	}
	return s
}

func addStringSeeds(f *testing.F, seeds []string) {
	for _, s := range seeds {
		f.Add(s)
	}
}
