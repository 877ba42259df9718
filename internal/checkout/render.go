package checkout

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"unicode"
)

// StoreInfo is the shop data printed on order messages and receipts.
type StoreInfo struct {
	Name          string
	WhatsAppPhone string
	PickupAddress string
	OpeningHours  string
}

const orderMessageTemplate = `🛍️ *NUEVO PEDIDO - {{upper .Store.Name}}*

📋 *DETALLE DEL PEDIDO:*
{{range $i, $line := .Summary.Lines}}
{{inc $i}}. *{{$line.Name}}*
{{- if $line.Color}}
   • Color: {{$line.Color}}{{end}}
{{- if $line.Size}}
   • Talla: {{$line.Size}}{{end}}
   • Cantidad: {{$line.Quantity}}
   • Precio unitario: {{money $line.UnitPrice}}
   • Subtotal: {{money $line.LineSubtotal}}
   • SKU: {{$line.SKU}}
{{end}}
💰 *RESUMEN:*
   • Pedido: {{.Summary.Reference}}
   • Total de productos: {{.Summary.ItemCount}}
{{- if .Summary.DiscountAmount.IsPositive}}
   • Descuento: {{money .Summary.DiscountAmount}}{{end}}
   • *TOTAL A PAGAR: {{money .Summary.Total}}*

📍 *INFORMACIÓN DE RETIRO:*
📍 Dirección: {{.Store.PickupAddress}}
⏰ Horarios de atención: {{.Store.OpeningHours}}

Por favor confirmen disponibilidad de stock y coordinen horario de retiro.
¡Muchas gracias! 😊`

const receiptTemplate = `{{upper .Store.Name}}
{{.Store.PickupAddress}}
{{- if .Store.WhatsAppPhone}}
Tel: +{{.Store.WhatsAppPhone}}{{end}}
--------------------------------
Venta: {{.Summary.Reference}}
Fecha: {{.Summary.CreatedAt.Format "02/01/2006 15:04"}}
Cliente: {{.Summary.Customer.Name}}
--------------------------------
{{- range .Summary.Lines}}
{{.Name}}{{if .Variant}} ({{.Variant}}){{end}}
  {{.Quantity}} x {{money .UnitPrice}} = {{money .LineSubtotal}}
{{- end}}
--------------------------------
Subtotal: {{money .Summary.Subtotal}}
{{- if .Summary.DiscountAmount.IsPositive}}
Descuento: -{{money .Summary.DiscountAmount}}{{end}}
TOTAL: {{money .Summary.Total}}
Pago: {{title .Summary.Customer.PaymentMethod.String}}

¡Gracias por su compra!`

// Renderer produces the storefront order message and the register receipt.
type Renderer struct {
	store   StoreInfo
	order   *template.Template
	receipt *template.Template
}

func NewRenderer(store StoreInfo, money *Money) (*Renderer, error) {
	if money == nil {
		return nil, fmt.Errorf("money formatter required")
	}
	funcs := template.FuncMap{
		"money": money.Format,
		"inc":   func(i int) int { return i + 1 },
		"upper": strings.ToUpper,
		"title": capitalize,
	}
	order, err := template.New("order").Funcs(funcs).Parse(orderMessageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse order template: %w", err)
	}
	receipt, err := template.New("receipt").Funcs(funcs).Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Renderer{store: store, order: order, receipt: receipt}, nil
}

func (r *Renderer) Store() StoreInfo { return r.store }

// OrderMessage is the text sent to the shop over WhatsApp.
func (r *Renderer) OrderMessage(summary OrderSummary) (string, error) {
	return r.execute(r.order, summary)
}

// Receipt is the plain-text register receipt.
func (r *Renderer) Receipt(summary OrderSummary) (string, error) {
	return r.execute(r.receipt, summary)
}

func (r *Renderer) execute(tmpl *template.Template, summary OrderSummary) (string, error) {
	var b strings.Builder
	data := struct {
		Store   StoreInfo
		Summary OrderSummary
	}{Store: r.store, Summary: summary}
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// WhatsAppURL builds a wa.me click-to-chat link. Non-digits are stripped
// from phone and spaces in the message are sent as %20.
func WhatsAppURL(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + digits + "?text=" + text
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
