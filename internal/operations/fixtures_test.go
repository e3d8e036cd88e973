package operations

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sumocli/internal/config"
	"sumocli/internal/exporter"
	"sumocli/internal/league"
	"sumocli/internal/render/rendertest"
)

const (
	banzukeURL  = "https://example.test/banzuke/"
	profileURL  = "https://example.test/profile/%s/"
	crossURL    = "https://example.test/crossref/"
	torikumiURL = "https://example.test/torikumi/%d/%d/"
	awardsURL   = "https://example.test/champions/"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type entrant struct {
	name string
	id   string
}

func entrantCell(class string, e *entrant) string {
	if e == nil {
		return fmt.Sprintf(`<td class="%s"></td>`, class)
	}
	return fmt.Sprintf(`<td class="%s"><dl><dt>%s</dt><dd><a href="/EnSumoDataRikishi/profile/%s/">profile</a></dd></dl></td>`,
		class, e.name, e.id)
}

func rankRow(label string, east, west *entrant) string {
	return fmt.Sprintf(`<tr class="bTnone">%s<td class="rank">%s</td>%s</tr>`,
		entrantCell("east", east), label, entrantCell("west", west))
}

func rosterPage(title string, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><select id="kaku_select"><option value="1">M</option></select>`)
	fmt.Fprintf(&b, `<div class="dayNum">%s</div><table><tbody>`, title)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</tbody></table><div class="pager"><span class="page_next"></span></div></body></html>`)
	return b.String()
}

func profilePage(fullName, stable, birth string) string {
	return fmt.Sprintf(`<html><body><table class="mdTable2"><tbody>`+
		`<tr><td class="fntXL"> %s </td></tr>`+
		`<tr><th>Heya</th><td> %s </td></tr>`+
		`<tr><th>Date of Birth</th><td> %s </td></tr>`+
		`</tbody></table></body></html>`, fullName, stable, birth)
}

type crossRow struct {
	east, label, west string
}

func crossPage(rows ...crossRow) string {
	cell := func(id string) string {
		if id == "" {
			return "<td></td>"
		}
		return fmt.Sprintf(`<td class="shikona"><a href="Rikishi.aspx?r=%s">name</a></td>`, id)
	}
	var b strings.Builder
	b.WriteString(`<html><body><table class="banzuke"><tbody>`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr>%s<td class="short_rank">%s</td>%s</tr>`, cell(r.east), r.label, cell(r.west))
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

// rosterSession serves a ranking page per division. Divisions missing from
// rows get one placeholder row so they show up in the checkpoint; an empty
// slice gives an empty page.
func rosterSession(rows map[int][]string) *rendertest.Session {
	s := rendertest.NewSession(map[string]string{banzukeURL: rosterPage("landing")})
	for num := 1; num <= 6; num++ {
		key := fmt.Sprintf("division-%d", num)
		divRows, ok := rows[num]
		if !ok {
			divRows = []string{rankRow("#1", &entrant{fmt.Sprintf("D%d", num), fmt.Sprintf("%d00", num)}, nil)}
		}
		s.Pages[key] = rosterPage(key, divRows...)
		s.Options[fmt.Sprint(num)] = key
	}
	return s
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Sources.BanzukeURL = banzukeURL
	cfg.Sources.ProfileURL = profileURL
	cfg.Sources.CrossRefURL = crossURL
	cfg.Sources.TorikumiURL = torikumiURL
	cfg.Sources.AwardsURL = awardsURL
	cfg.Scrape.WaitTimeout = time.Millisecond
	cfg.Scrape.PageWait = time.Millisecond
	cfg.Scrape.MaxResumeIterations = 1
	return cfg
}

func testDeps(t *testing.T, cfg *config.Config, session *rendertest.Session) (StageDeps, *rendertest.Renderer) {
	t.Helper()
	paths, err := config.NewPaths(cfg.Paths)
	require.NoError(t, err)
	renderer := &rendertest.Renderer{Session: session}
	return StageDeps{
		Config:   cfg,
		Paths:    paths,
		Tables:   league.NewTables(),
		Renderer: renderer,
		Writer:   exporter.NewCSVWriter(paths),
		Logger:   quietLogger(),
		Now:      func() time.Time { return time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC) },
	}, renderer
}

func championsPage() string {
	winner := func(title, id string) string {
		return fmt.Sprintf(`<div class="mdSection1"><h3 class="mdTtl6 type2">%s</h3>`+
			`<table class="mdTable3 type2"><tr><th><a href="/EnSumoDataRikishi/profile/%s/">w</a></th></tr></table></div>`, title, id)
	}
	return `<html><body><div><div class="mdSection1">` +
		winner("Makuuchi", "3842") + winner("Juryo", "4011") +
		`</div><div id="sansho">` + winner("Shukun-sho (Outstanding Performance)", "3921") +
		`</div></div></body></html>`
}
