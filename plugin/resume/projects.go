package resume

import (
	"fmt"
	"regexp"
	"strings"
)

// Project is one entry of the resume's PROJECTS section.
type Project struct {
	Title   string
	Tech    string
	Dates   string
	Bullets []string
}

// NoProjectsMessage is returned by FormatProjects when extraction found nothing.
const NoProjectsMessage = "I couldn't find any projects in the resume yet."

const maxBulletsPerProject = 4

var (
	// Horizontal whitespace runs inside a line.
	spaceRunPattern = regexp.MustCompile(`[ \t]+`)

	// Next section boundary: an ALL-CAPS header made of letters, spaces and
	// ampersands only, e.g. "TECHNICAL SKILLS" or "EDUCATION & AWARDS".
	sectionHeaderPattern = regexp.MustCompile(`^[A-Z][A-Z &]*$`)

	// Month-year to month-year range, e.g. "Jan 2024 - May 2024" or
	// "September 2025 – Present".
	dateRangePattern = regexp.MustCompile(`(?i)(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*\d{4}\s*[-–—]\s*(present|current|(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s*\d{4})`)

	// Bullet marker: one or more hyphens followed by whitespace.
	bulletPattern = regexp.MustCompile(`^-+\s+`)

	// Link bullets are grouped after the descriptive ones when formatting.
	linkBulletPattern = regexp.MustCompile(`(?i)^(github|hugging face|link)\s*:`)
)

// ExtractProjects parses the PROJECTS section of the resume text into ordered
// records. A resume without a PROJECTS header yields an empty slice, never an
// error.
func ExtractProjects(text string) []Project {
	lines := normalizeLines(text)

	start := -1
	for i, line := range lines {
		if strings.EqualFold(line, "PROJECTS") {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(lines)
	for i := start; i < len(lines); i++ {
		if sectionHeaderPattern.MatchString(lines[i]) && !strings.Contains(lines[i], "|") {
			end = i
			break
		}
	}

	var projects []Project
	var current *Project

	for _, line := range lines[start:end] {
		switch {
		case isProjectHeader(line):
			if current != nil {
				projects = append(projects, *current)
			}
			current = parseProjectHeader(line)

		case bulletPattern.MatchString(line):
			if current != nil {
				bullet := strings.TrimSpace(bulletPattern.ReplaceAllString(line, ""))
				current.Bullets = append(current.Bullets, bullet)
			}

		default:
			// A wrapped continuation of the previous bullet.
			if current != nil && len(current.Bullets) > 0 {
				last := len(current.Bullets) - 1
				current.Bullets[last] = current.Bullets[last] + " " + line
			}
		}
	}
	if current != nil {
		projects = append(projects, *current)
	}

	return projects
}

// normalizeLines splits the text into trimmed, whitespace-collapsed,
// non-empty lines.
func normalizeLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.ReplaceAll(line, "\u00a0", " ")
		line = spaceRunPattern.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// isProjectHeader reports whether the line introduces a new project:
// "Title | Tech summary | Jan 2024 - May 2024".
func isProjectHeader(line string) bool {
	return strings.Contains(line, "|") &&
		dateRangePattern.MatchString(line) &&
		!bulletPattern.MatchString(line)
}

func parseProjectHeader(line string) *Project {
	segments := strings.Split(line, "|")
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	project := &Project{Title: segments[0]}
	if len(segments) > 1 {
		project.Tech = segments[1]
	}

	if dates := dateRangePattern.FindString(line); dates != "" {
		project.Dates = strings.TrimSpace(dates)
	} else if len(segments) > 2 {
		project.Dates = segments[2]
	}

	return project
}

// FormatProjects renders the extracted projects as the plain-text answer of
// the structured query path. Link bullets (GitHub / Hugging Face / Link) are
// grouped after the descriptive bullets so the client can render them as
// badges.
func FormatProjects(projects []Project) string {
	if len(projects) == 0 {
		return NoProjectsMessage
	}

	var blocks []string
	for _, project := range projects {
		var b strings.Builder
		fmt.Fprintf(&b, "%s (%s)", project.Title, project.Dates)

		var links []string
		shown := 0
		for _, bullet := range project.Bullets {
			if linkBulletPattern.MatchString(bullet) {
				links = append(links, bullet)
				continue
			}
			if shown < maxBulletsPerProject {
				b.WriteString("\n- " + bullet)
				shown++
			}
		}
		for _, link := range links {
			b.WriteString("\n" + link)
		}

		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}
