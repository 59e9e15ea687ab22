package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	chunkSoftLimit    = 500
	fallbackChunkSize = 1000
	linesPerPage      = 50
)

var (
	sectionPattern    = regexp.MustCompile(`(?i)^(SECTION|BYLAW|CHAPTER)\s+(\d+):\s*(.+)`)
	subsectionPattern = regexp.MustCompile(`^(\d+\.\d+)\s+(.+)`)
)

// ParseHandbook разбивает текст справочника на фрагменты по заголовкам разделов.
func ParseHandbook(content, universityName string) []Chunk {
	if strings.TrimSpace(universityName) == "" {
		universityName = "Custom University"
	}

	lines := strings.Split(content, "\n")

	var (
		chunks       []Chunk
		current      []string
		section      string
		subsection   string
		sawStructure bool
	)

	flush := func(lineNo int) {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			ID:      strconv.Itoa(len(chunks)),
			Content: strings.TrimSpace(strings.Join(current, "\n")),
			Source:  chunkSource(universityName, section),
			Section: chunkSection(section, subsection),
			Page:    strconv.Itoa(lineNo/linesPerPage + 1),
		})
		current = current[:0]
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		if match := sectionPattern.FindStringSubmatch(line); match != nil {
			flush(lineNo)
			section = fmt.Sprintf("%s %s: %s", match[1], match[2], match[3])
			subsection = ""
			sawStructure = true
			current = append(current, line)
			continue
		}

		if match := subsectionPattern.FindStringSubmatch(line); match != nil {
			flush(lineNo)
			subsection = match[1] + " " + match[2]
			sawStructure = true
			current = append(current, line)
			continue
		}

		if line != "" {
			current = append(current, line)
			continue
		}
		if len(current) > 0 && len(strings.Join(current, "\n")) > chunkSoftLimit {
			flush(lineNo)
		}
	}
	flush(len(lines))

	if !sawStructure {
		return fallbackChunks(content, universityName)
	}
	return chunks
}

func chunkSource(universityName, section string) string {
	if section == "" {
		section = "Introduction"
	}
	return fmt.Sprintf("%s Handbook, %s", universityName, section)
}

func chunkSection(section, subsection string) string {
	if subsection != "" {
		return subsection
	}
	if section != "" {
		return section
	}
	return "Introduction"
}

func fallbackChunks(content, universityName string) []Chunk {
	text := []rune(strings.TrimSpace(content))
	if len(text) == 0 {
		return nil
	}

	var chunks []Chunk
	for start := 0; start < len(text); start += fallbackChunkSize {
		end := start + fallbackChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			ID:      strconv.Itoa(start / fallbackChunkSize),
			Content: string(text[start:end]),
			Source:  universityName + " Handbook",
			Section: "General",
			Page:    strconv.Itoa(start/fallbackChunkSize + 1),
		})
	}
	return chunks
}
