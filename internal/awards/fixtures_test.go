package awards

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cell is one titled subsection with a winner table
type cell struct {
	title string
	ids   []string
}

func (c cell) html() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<div class="mdSection1"><h3 class="mdTtl6 type2">%s</h3><table class="mdTable3 type2">`, c.title)
	for _, id := range c.ids {
		if id == "" {
			sb.WriteString(`<tr><th>unknown</th><td>-</td></tr>`)
			continue
		}
		fmt.Fprintf(&sb, `<tr><th><a href="/EnSumoDataRikishi/profile/%s/">n%s</a></th><td>13-2</td></tr>`, id, id)
	}
	sb.WriteString(`</table></div>`)
	return sb.String()
}

func championsPage(champions []cell, prizes []cell) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div id="main"><div class="mdSection1">`)
	for _, c := range champions {
		sb.WriteString(c.html())
	}
	sb.WriteString(`</div><div id="sansho">`)
	for _, c := range prizes {
		sb.WriteString(c.html())
	}
	sb.WriteString(`</div></div></body></html>`)
	return sb.String()
}
