package report

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the character budget for one chat message body.
const DefaultMaxChars = 2800

// Chunk packs rows, in order, into blocks whose length plus the header
// length stays within budget. Each row is followed by a newline.
// A row that cannot fit even in an empty block is placed alone.
func Chunk(rows []string, header string, budget int) []string {
	headerLen := utf8.RuneCountInString(header)

	var chunks []string
	var block strings.Builder
	blockLen := 0

	for _, row := range rows {
		line := row + "\n"
		lineLen := utf8.RuneCountInString(line)

		if blockLen > 0 && blockLen+lineLen+headerLen > budget {
			chunks = append(chunks, block.String())
			block.Reset()
			blockLen = 0
		}
		block.WriteString(line)
		blockLen += lineLen
	}

	if blockLen > 0 {
		chunks = append(chunks, block.String())
	}
	return chunks
}

// Heading is the first line of every message for a list.
func Heading(listName, thresholdLabel string) string {
	return fmt.Sprintf("🚨 *Below are the ClickUp Tickets in %s Open for Over %s* 🚨\n\n", listName, thresholdLabel)
}

// ChunkLabel names a chunk; chunks after the first are marked as continued.
func ChunkLabel(listName string, index int) string {
	if index == 0 {
		return fmt.Sprintf("📂 *%s*", listName)
	}
	return fmt.Sprintf("📂 *%s (continued)*", listName)
}

// BuildMessages turns a list's rows into ready-to-post messages.
// No rows means no messages.
func BuildMessages(listName, thresholdLabel string, rows []string, budget int) []string {
	if len(rows) == 0 {
		return nil
	}

	header := TableHeader()
	heading := Heading(listName, thresholdLabel)

	chunks := Chunk(rows, header, budget)
	messages := make([]string, 0, len(chunks))
	for i, c := range chunks {
		messages = append(messages, fmt.Sprintf("%s%s\n```%s%s```", heading, ChunkLabel(listName, i), header, c))
	}
	return messages
}
