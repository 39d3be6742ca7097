// ABOUTME: Spanish summary text for a created booking or quotation
// ABOUTME: Lists dates, places, additionals and three coverage options with prices

package booking

import (
	"fmt"
	"strings"

	"github.com/2389/rently-gateway/internal/rently"
)

// Coverage tier multipliers over the basic price.
const (
	intermediateMultiplier = 1.18
	maximumMultiplier      = 1.28
)

// hiddenAdditionals are charges not worth listing to the customer.
var hiddenAdditionals = map[string]bool{
	"Cargo servicio en Aeropuerto": true,
	"IVA Diarias":                  true,
	"IVA Adicionales":              true,
}

// Summary renders the customer-facing description of b.
func Summary(b *rently.Booking) string {
	category := "Categoría no especificada"
	var categoryFranchises rently.Franchises
	if b.Category != nil {
		if b.Category.Name != "" {
			category = b.Category.Name
		}
		categoryFranchises = b.Category.Franchises
	}

	operation := "Reserva"
	if b.IsQuotation {
		operation = "Cotización"
	}

	deliveryName, returnName := "", ""
	if b.DeliveryPlace != nil {
		deliveryName = b.DeliveryPlace.Name
	}
	if b.ReturnPlace != nil {
		returnName = b.ReturnPlace.Name
	}

	label := currencyLabel(b.Currency)
	basic := firstNonZero(b.Price, b.CustomerPrice)
	deposit := firstNonZero(b.Franchise, categoryFranchises.Franchise)
	damage := firstNonZero(b.FranchiseDamage, categoryFranchises.FranchiseDamage)
	rollover := firstNonZero(b.FranchiseRollover, categoryFranchises.FranchiseRollover)
	theft := firstNonZero(b.FranchiseTheft, categoryFranchises.FranchiseTheft)
	hail := firstNonZero(b.FranchiseHail, categoryFranchises.FranchiseHail)

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s - %s*\n", operation, category)
	fmt.Fprintf(&sb, "Entrega: %s - %s\n", formatTimestamp(b.FromDate), deliveryName)
	fmt.Fprintf(&sb, "Devolución: %s - %s\n", formatTimestamp(b.ToDate), returnName)
	sb.WriteString("KILÓMETROS LIBRES en todas las opciones\n")
	for _, a := range b.Additionals {
		if a.Additional == nil || hiddenAdditionals[a.Additional.Name] {
			continue
		}
		fmt.Fprintf(&sb, "Adicional: %s\n", a.Additional.Name)
	}
	sb.WriteString("\n")

	writeOption(&sb, "Opción 1 – Cobertura Básica", label, basic, deposit, damage, rollover, theft, hail)
	sb.WriteString("\n")
	writeOption(&sb, "Opción 2 – Cobertura Intermedia", label, basic*intermediateMultiplier, deposit, damage*0.5, rollover, theft, hail)
	sb.WriteString("\n")
	writeOption(&sb, "Opción 3 – Cobertura Máxima", label, basic*maximumMultiplier, deposit*0.5, 0, 0, theft, 0)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Tu número de reserva es %s. Si necesitás hacer alguna consulta o modificación, podés usar este número. ¡Espero que disfrutes tu viaje! 😊", bookingNumber(b.ID))
	return sb.String()
}

func writeOption(sb *strings.Builder, title, label string, total, deposit, damage, rollover, theft, hail float64) {
	sb.WriteString(title + "\n")
	fmt.Fprintf(sb, "Valor: *%s* | Depósito: %s\n", formatPrice(label, total), formatPrice(label, deposit))
	fmt.Fprintf(sb, "Franquicias: Daños: %s – Vuelcos: %s – Robo: %s – Granizo: %s\n",
		formatAmount(damage), formatAmount(rollover), formatAmount(theft), formatAmount(hail))
}

func bookingNumber(id int) string {
	if id == 0 {
		return ""
	}
	return fmt.Sprint(id)
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
