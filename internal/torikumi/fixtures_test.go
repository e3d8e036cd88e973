package torikumi

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type boutRow struct {
	left, right string
	kimarite    string
	winner      string // "left", "right" or ""
}

func playerCell(id string) string {
	if id == "" {
		return `<td class="player"></td>`
	}
	return fmt.Sprintf(`<td class="player"><span class="name"><a href="/EnSumoDataRikishi/profile/%s/">n%s</a></span></td>`, id, id)
}

func resultCell(win bool) string {
	if win {
		return `<td class="result win">&#9675;</td>`
	}
	return `<td class="result">&#9679;</td>`
}

func (b boutRow) html() string {
	return "<tr>" +
		resultCell(b.winner == "left") +
		playerCell(b.left) +
		fmt.Sprintf(`<td class="decide">%s</td>`, b.kimarite) +
		playerCell(b.right) +
		resultCell(b.winner == "right") +
		"</tr>"
}

func dayPage(header string, bouts ...boutRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<html><body><div id="dayHead">%s</div><table id="torikumi_table"><colgroup></colgroup>`, header)
	sb.WriteString(`<tr><th>result</th><th>east</th><th>kimarite</th><th>west</th><th>result</th></tr>`)
	for _, b := range bouts {
		sb.WriteString(b.html())
	}
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}
