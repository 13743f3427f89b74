// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/common-nighthawk/go-figure"
	"golang.org/x/term"

	"rivaas.dev/scoped/metrics"
	"rivaas.dev/scoped/router"
)

const (
	environmentDevelopment = "development"
	environmentProduction  = "production"
)

// colorWriter downsamples colors to what w supports. Production output is
// always plain.
func (a *App) colorWriter(w io.Writer) *colorprofile.Writer {
	cpw := colorprofile.NewWriter(w, os.Environ())
	if a.settings.Service.Environment == environmentProduction {
		cpw.Profile = colorprofile.NoTTY
	}
	return cpw
}

// printStartupBanner prints the service name, its addresses and, in
// development, the route table.
func (a *App) printStartupBanner(addr string) {
	w := a.colorWriter(a.out)
	svc := a.settings.Service

	gradient := []string{"10", "11"}
	if svc.Environment == environmentDevelopment {
		gradient = []string{"12", "14", "10", "11"}
	}

	var art strings.Builder
	for _, line := range figure.NewFigure(svc.Name, "", false).Slicify() {
		if strings.TrimSpace(line) != "" {
			for i, char := range line {
				style := lipgloss.NewStyle().
					Foreground(lipgloss.Color(gradient[i%len(gradient)])).
					Bold(true)
				_, _ = art.WriteString(style.Render(string(char)))
			}
		}
		_, _ = art.WriteString("\n")
	}

	categoryStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Width(14).
		PaddingLeft(2).
		Align(lipgloss.Left)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	disabledStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	providerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	line := func(b *strings.Builder, label, value, color string) {
		_, _ = b.WriteString(labelStyle.Render(label) + "  " + valueStyle.Foreground(lipgloss.Color(color)).Render(value) + "\n")
	}

	var out strings.Builder
	_, _ = out.WriteString(categoryStyle.Render("Service") + "\n")
	line(&out, "Version:", svc.Version, "14")
	line(&out, "Environment:", svc.Environment, "11")
	line(&out, "Address:", "http://"+displayAddr(addr)+a.settings.Server.Prefix, "10")

	_, _ = out.WriteString("\n" + categoryStyle.Render("Routing") + "\n")
	line(&out, "Scopes:", strconv.Itoa(a.router.NumScopes()), "15")
	line(&out, "Resources:", strconv.Itoa(len(a.router.Resources())), "15")
	if a.health != nil {
		line(&out, "Health:", a.health.healthz()+", "+a.health.readyz(), "15")
	}

	_, _ = out.WriteString("\n" + categoryStyle.Render("Observability") + "\n")
	if a.metrics != nil {
		target := a.settings.Metrics.Endpoint
		if a.metrics.Provider() == metrics.PrometheusProvider {
			target = "http://" + displayAddr(a.settings.Metrics.Addr) + a.settings.Metrics.Path
		}
		_, _ = out.WriteString(labelStyle.Render("Metrics:") + "  " +
			valueStyle.Foreground(lipgloss.Color("13")).Render(target) + "  " +
			providerStyle.Render(fmt.Sprintf("[%s]", a.metrics.Provider())) + "\n")
	} else {
		_, _ = out.WriteString(labelStyle.Render("Metrics:") + "  " + disabledStyle.Render("Disabled") + "\n")
	}
	if p := a.settings.Tracing.Provider; p != "" && p != "noop" {
		_, _ = out.WriteString(labelStyle.Render("Tracing:") + "  " +
			valueStyle.Foreground(lipgloss.Color("12")).Render("Enabled") + "  " +
			providerStyle.Render(fmt.Sprintf("[%s]", p)) + "\n")
	} else {
		_, _ = out.WriteString(labelStyle.Render("Tracing:") + "  " + disabledStyle.Render("Disabled") + "\n")
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, art.String())
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, out.String())

	if svc.Environment == environmentDevelopment && len(a.router.Resources()) > 0 {
		_, _ = fmt.Fprintln(w)
		a.renderRoutesTable(w, 80)
	}
	_, _ = fmt.Fprintln(w)
}

// displayAddr turns ":8080" into "0.0.0.0:8080".
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	return addr
}

// routeRows lists one row per endpoint in registration order: methods,
// URI pattern, declaring scope and whether that scope has a fallback.
func routeRows(r *router.App) [][]string {
	var rows [][]string
	for _, res := range r.Resources() {
		scope := "-"
		fallback := "-"
		if info, ok := r.Scope(res.Scope()); ok {
			scope = fmt.Sprintf("%d %s", info.ID, info.Prefix)
			if info.HasFallback {
				fallback = "yes"
			}
		}
		for _, ep := range res.Endpoints() {
			methods := ep.Methods().String()
			if ep.Methods() == nil {
				methods = "*"
			}
			rows = append(rows, []string{methods, res.URI().String(), scope, fallback})
		}
	}
	return rows
}

var methodColors = map[string]string{
	http.MethodGet:     "10",
	http.MethodPost:    "12",
	http.MethodPut:     "11",
	http.MethodDelete:  "9",
	http.MethodPatch:   "13",
	http.MethodHead:    "14",
	http.MethodOptions: "7",
}

// renderRoutesTable writes the route table to w, at least width columns
// wide unless the terminal is narrower.
func (a *App) renderRoutesTable(w io.Writer, width int) {
	rows := routeRows(a.router)
	if len(rows) == 0 {
		return
	}
	useColors := a.settings.Service.Environment == environmentDevelopment

	headers := []string{"Methods", "Path", "Scope", "Fallback"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
		if useColors {
			if color, ok := methodColors[strings.SplitN(row[0], ",", 2)[0]]; ok {
				row[0] = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(row[0])
			}
		}
	}

	// borders (2) + separators (3) + padding (2 per column)
	minWidth := 2 + len(headers) - 1 + 2*len(headers)
	for _, n := range widths {
		minWidth += n
	}

	terminalWidth := width
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			terminalWidth = tw
		}
	}
	tableWidth := max(minWidth, width)
	if terminalWidth > 0 {
		tableWidth = min(tableWidth, terminalWidth)
	}
	tableWidth = max(60, tableWidth)

	borderStyle := lipgloss.NewStyle()
	if useColors {
		borderStyle = borderStyle.Foreground(lipgloss.Color("240"))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			style := lipgloss.NewStyle().Align(lipgloss.Left).Padding(0, 1)
			if row == table.HeaderRow && useColors {
				style = style.Bold(true).Foreground(lipgloss.Color("230"))
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...).
		Width(tableWidth)

	_, _ = fmt.Fprintln(w, t.Render())
}

// PrintRoutes writes the route table to w: one row per endpoint with its
// methods, URI pattern, declaring scope and whether that scope has a
// fallback. Colors follow the terminal's capabilities and are stripped in
// production.
//
// Example output:
//
//	╭─────────┬──────────────┬──────────┬──────────╮
//	│ Methods │ Path         │ Scope    │ Fallback │
//	├─────────┼──────────────┼──────────┼──────────┤
//	│ GET     │ /healthz     │ 0 /      │ -        │
//	│ GET     │ /users/:id   │ 1 /users │ yes      │
//	╰─────────┴──────────────┴──────────┴──────────╯
func (a *App) PrintRoutes(w io.Writer) {
	if len(a.router.Resources()) == 0 {
		_, _ = fmt.Fprintln(w, "No routes registered")
		return
	}
	a.renderRoutesTable(a.colorWriter(w), 120)
}
