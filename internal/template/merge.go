// Package template maintains the generated markdown guides: marked-section
// merging, version checks, and upgrades with backups.
package template

import (
	"fmt"
	"regexp"
)

var (
	startMarkerRe = regexp.MustCompile(`<!--\s*codesync-section-start:(\w+)\s*-->`)
	versionLineRe = regexp.MustCompile(`<!--\s*codesync-version:\s*[\d.]+\s*-->`)
)

// Section is a named, delimited span of a document. Text includes both
// markers; Start and End are byte offsets into the source document.
type Section struct {
	Name  string
	Text  string
	Start int
	End   int
}

// ExtractSections returns the well-formed sections of content in document
// order. A start marker with no matching end marker of the same name is
// skipped, and start markers inside an already-matched section are not
// considered again.
func ExtractSections(content string) []Section {
	var out []Section
	cursor := 0
	for _, loc := range startMarkerRe.FindAllStringSubmatchIndex(content, -1) {
		if loc[0] < cursor {
			continue
		}
		name := content[loc[2]:loc[3]]
		endRe := regexp.MustCompile(fmt.Sprintf(`<!--\s*codesync-section-end:%s\s*-->`, name))
		endLoc := endRe.FindStringIndex(content[loc[1]:])
		if endLoc == nil {
			continue
		}
		end := loc[1] + endLoc[1]
		out = append(out, Section{
			Name:  name,
			Text:  content[loc[0]:end],
			Start: loc[0],
			End:   end,
		})
		cursor = end
	}
	return out
}

// SupportsMerge reports whether content carries at least one section start
// marker and is therefore mergeable rather than replace-only.
func SupportsMerge(content string) bool {
	return startMarkerRe.MatchString(content)
}

// Merge splices the sections of newContent into existing by name. Content
// outside matched sections is never altered; sections only present in
// existing are kept, and sections only present in newContent are not
// inserted. When either side has no sections at all the new content is
// returned verbatim. The trailing version marker is rewritten to the new
// template's (last one wins when there are several).
func Merge(existing, newContent string) string {
	existingSections := ExtractSections(existing)
	newSections := ExtractSections(newContent)

	if len(existingSections) == 0 || len(newSections) == 0 {
		return newContent
	}

	byName := make(map[string]Section, len(newSections))
	for _, s := range newSections {
		byName[s.Name] = s
	}

	// Splice back-to-front so earlier offsets never shift.
	result := existing
	for i := len(existingSections) - 1; i >= 0; i-- {
		old := existingSections[i]
		repl, ok := byName[old.Name]
		if !ok {
			continue
		}
		result = result[:old.Start] + repl.Text + result[old.End:]
	}

	if markers := versionLineRe.FindAllString(newContent, -1); len(markers) > 0 {
		result = versionLineRe.ReplaceAllLiteralString(result, markers[len(markers)-1])
	}

	return result
}
