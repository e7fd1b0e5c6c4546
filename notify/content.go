package notify

import (
	"fmt"
	"strings"

	"rationtrack/models"
)

const arrivalDateLayout = "02 Jan 2006"

// EmailContent renders the HTML notification email for a stock alert.
func EmailContent(alert models.StockAlert) Content {
	arrival := alert.ArrivalDate.Format(arrivalDateLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Stock Alert - %s Available!</h2>\n", alert.CommodityName)
	fmt.Fprintf(&b, "<p><strong>Shop:</strong> %s</p>\n", alert.ShopName)
	fmt.Fprintf(&b, "<p><strong>Commodity:</strong> %s</p>\n", alert.CommodityName)
	fmt.Fprintf(&b, "<p><strong>Arrival Date:</strong> %s</p>\n", arrival)
	if alert.QuantityKg != nil {
		fmt.Fprintf(&b, "<p><strong>Quantity:</strong> %.0f kg</p>\n", *alert.QuantityKg)
	}
	if alert.Message != nil && *alert.Message != "" {
		fmt.Fprintf(&b, "<p><strong>Additional Info:</strong> %s</p>\n", *alert.Message)
	}
	b.WriteString("<p>Visit the shop early to ensure availability!</p>\n")
	b.WriteString("<p>Best regards,<br>RationTrack Team</p>\n")

	return Content{
		Subject: fmt.Sprintf("Stock Alert: %s available at %s", alert.CommodityName, alert.ShopName),
		Body:    b.String(),
	}
}

// SMSContent renders the one-line SMS for a stock alert.
func SMSContent(alert models.StockAlert) Content {
	arrival := alert.ArrivalDate.Format(arrivalDateLayout)

	qty := ""
	if alert.QuantityKg != nil {
		qty = fmt.Sprintf("Qty: %.0fkg. ", *alert.QuantityKg)
	}

	return Content{
		Body: fmt.Sprintf("%s available at %s on %s. %sVisit early! - RationTrack",
			alert.CommodityName, alert.ShopName, arrival, qty),
	}
}
