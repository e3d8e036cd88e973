package profile

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type profilePage struct {
	fullName    string
	rows        map[string]string
	debut       string
	tournaments int
}

func defaultPage() profilePage {
	return profilePage{
		fullName: "Hoshoryu Tomokatsu",
		rows: map[string]string{
			"Heya":           "Tatsunami",
			"Name":           "SUGARAGCHAA Byambasuren",
			"Date of Birth":  "May 22, 1999",
			"Place of Birth": "Mongolia, Ulaanbaatar",
			"Height":         "188.0cm",
			"Weight":         "149.0kg",
		},
		debut:       "January, 2018",
		tournaments: 30,
	}
}

var rowOrder = []string{"Heya", "Name", "Date of Birth", "Place of Birth", "Height", "Weight", "Retire"}

func (p profilePage) html() string {
	var b strings.Builder
	b.WriteString(`<html><body>`)
	if p.debut != "" {
		b.WriteString(fmt.Sprintf(`<div class="mdRankBox3"><div class="mdBox5"><dl><dt>Debut</dt><dd>%s</dd></dl></div></div>`, p.debut))
	}
	b.WriteString(`<table class="mdTable2"><tbody>`)
	if p.fullName != "" {
		b.WriteString(fmt.Sprintf(`<tr><td class="fntXL"> %s </td></tr>`, p.fullName))
	}
	for _, label := range rowOrder {
		if v, ok := p.rows[label]; ok {
			b.WriteString(fmt.Sprintf(`<tr><th>%s</th><td> %s </td></tr>`, label, v))
		}
	}
	b.WriteString(`</tbody></table><table class="record"><tbody>`)
	b.WriteString(`<tr class="bBnone name hoshitoriAll"><td>career</td></tr>`)
	for i := 0; i < p.tournaments; i++ {
		b.WriteString(`<tr class="bBnone name"><td>basho</td></tr>`)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}
