package llm

import (
	"fmt"
	"strings"
)

// CompatibleSentinel is the literal token the oracle returns when a script
// has no compatibility issues.
const CompatibleSentinel = "COMPATIBLE"

// InstructionsPrompt frames the conversion of one release's blog post into
// compatibility-checking instructions: extract breaking-change detection
// rules, ignore non-breaking items.
func InstructionsPrompt(releaseVersion, blogContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a NuShell expert analyzing release notes. Your task is to convert the blog post content for NuShell %s into a set of specific, actionable instructions for checking if existing NuShell scripts are compatible with this version.

Focus on:
1. Breaking changes that affect script syntax or behavior
2. Deprecated features and their replacements
3. New syntax requirements or restrictions
4. Changes to built-in commands or their parameters
5. Changes to variable scoping or data types

For each breaking change, provide:
- A clear description of what changed
- How to detect if a script uses the old pattern
- What the new pattern should be

Ignore:
- New features that don't affect existing scripts
- Performance improvements
- Bug fixes that don't change expected behavior
- Documentation updates

Blog post content:
%s

Please provide the output as a structured list of compatibility checks:
`, releaseVersion, blogContent)
	return b.String()
}

// AnalysisPrompt frames one script's compatibility review. The oracle must
// answer with either the compatibility sentinel or a JSON array of issues.
func AnalysisPrompt(path, compatibleVersion, targetVersion, instructions, scriptContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a NuShell expert analyzing script compatibility. Review the following NuShell script against the compatibility requirements for version %s.

Script path: %s
Last known compatible version: %s
Target version: %s

Compatibility requirements to check:
%s

Script content:
`+"```nushell\n%s\n```"+`

Analyze the script and identify any compatibility issues. For each issue found, provide:
1. A clear description of the problem
2. The specific line(s) or pattern that causes the issue
3. A suggested fix or replacement
4. The severity level (error, warning, info)

If the script is fully compatible, respond with "%s".

Format your response as a JSON array of issues:
[
  {
    "description": "Clear description of the issue",
    "suggested_fix": "How to fix it",
    "severity": "error|warning|info"
  }
]

Or simply: %s
`, targetVersion, path, compatibleVersion, targetVersion, instructions, scriptContent, CompatibleSentinel, CompatibleSentinel)
	return b.String()
}
