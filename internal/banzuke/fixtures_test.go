package banzuke

import (
	"fmt"
	"strings"
)

type cell struct {
	name string
	id   string
}

func cellHTML(class string, c *cell) string {
	if c == nil {
		return fmt.Sprintf(`<td class="%s"></td>`, class)
	}
	return fmt.Sprintf(`<td class="%s"><dl><dt>%s</dt><dd><a href="/EnSumoDataRikishi/profile/%s/">profile</a></dd></dl></td>`,
		class, c.name, c.id)
}

func rowHTML(label string, east, west *cell) string {
	return fmt.Sprintf(`<tr class="bTnone">%s<td class="rank">%s</td>%s</tr>`,
		cellHTML("east", east), label, cellHTML("west", west))
}

func pageHTML(division string, next bool, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><select id="kaku_select"><option value="1">M</option></select>`)
	b.WriteString(fmt.Sprintf(`<div class="dayNum">%s</div><table><tbody>`, division))
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</tbody></table><div class="pager"><span class="page_prev"><a href="#">&lt;</a></span>`)
	if next {
		b.WriteString(`<span class="page_next"><a href="#">&gt;</a></span>`)
	} else {
		b.WriteString(`<span class="page_next"></span>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// withSelected marks option value as the one the page is showing
func withSelected(html, value string) string {
	return strings.Replace(html, fmt.Sprintf(`<option value="%s">`, value), fmt.Sprintf(`<option value="%s" selected>`, value), 1)
}
