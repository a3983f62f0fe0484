package report

import (
	"bytes"
	"encoding/base64"
	"html/template"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var plPrinter = message.NewPrinter(language.Polish)

// zl formats an amount the Polish way, e.g. 1 234,50 zł.
func zl(v float64) string {
	return plPrinter.Sprintf("%.2f zł", v)
}

var reportTmpl = template.Must(template.New("daily").Funcs(template.FuncMap{
	"zl": zl,
}).Parse(`<!DOCTYPE html>
<html lang="pl">
<head>
<meta charset="utf-8">
<title>Rozliczenie dnia — {{.Report.Driver.Name}} {{.Report.Date}}</title>
<style>
  body { font-family: "DejaVu Sans", sans-serif; font-size: 12px; margin: 24px; }
  h1 { font-size: 18px; margin-bottom: 0; }
  .sub { color: #555; margin-top: 2px; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { border: 1px solid #ccc; padding: 4px 6px; text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  .totals td { font-weight: bold; }
  .qr { margin-top: 16px; }
</style>
</head>
<body>
<h1>Rozliczenie dnia — {{.Report.Driver.Name}}</h1>
<p class="sub">{{.Report.Date}}</p>

<h2>Dostawy</h2>
<table>
<tr><th>Klient</th><th>Kwota</th><th>Gotówka</th><th>Karta</th><th>Przelew</th><th>Dług</th><th>Spłata długu</th></tr>
{{range .Report.Deliveries}}
<tr>
  <td>{{if .Client}}{{.Client.Name}}{{end}}</td>
  <td>{{zl .Amount}}</td>
  <td>{{zl .CashAmount}}</td>
  <td>{{zl .CardAmount}}</td>
  <td>{{zl .Transfer}}</td>
  <td>{{zl .Debt}}</td>
  <td>{{zl .ExtraPayment}}</td>
</tr>
{{end}}
<tr class="totals">
  <td>Razem</td>
  <td></td>
  <td>{{zl .Report.Totals.Cash}}</td>
  <td>{{zl .Report.Totals.Card}}</td>
  <td>{{zl .Report.Totals.Transfer}}</td>
  <td>{{zl .Report.Totals.Debt}}</td>
  <td>{{zl .Report.Totals.Extra}}</td>
</tr>
</table>

<h2>Wydatki</h2>
<table>
<tr><th>Rodzaj</th><th>Kwota</th></tr>
{{range .Report.Expenses}}
<tr><td>{{.Type}}{{if .Name}} — {{.Name}}{{end}}</td><td>{{zl .Amount}}</td></tr>
{{end}}
<tr class="totals"><td>Razem</td><td>{{zl .Report.Totals.Expenses}}</td></tr>
</table>

<h2>Rozliczenie gotówki</h2>
<table>
<tr><td>Do rozliczenia</td><td>{{zl .Report.Totals.CashDue}}</td></tr>
{{with .Report.DayStatus}}
<tr><td>Przeliczono</td><td>{{zl .Balance.CountedTotal}}</td></tr>
<tr><td>Różnica</td><td>{{zl .Balance.Difference}}</td></tr>
<tr><td>Status</td><td>{{.Status}}</td></tr>
{{end}}
</table>

{{if .QRDataURI}}
<div class="qr">
  <img src="{{.QRDataURI}}" width="120" height="120" alt="raport online">
</div>
{{end}}
</body>
</html>`))

type templateData struct {
	Report    *DailyReport
	QRDataURI template.URL
}

// RenderReportHTML produces the printable HTML for one daily report. The
// permalink, when non-empty, is embedded as a QR code.
func RenderReportHTML(rep *DailyReport, permalink string) (string, error) {
	data := templateData{Report: rep}
	if permalink != "" {
		png, err := qrcode.Encode(permalink, qrcode.Medium, 160)
		if err != nil {
			return "", err
		}
		data.QRDataURI = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
