package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailContent(t *testing.T) {
	alert := testAlert()

	content := EmailContent(alert)
	assert.Contains(t, content.Subject, "Rice")
	assert.Contains(t, content.Subject, alert.ShopName)
	assert.Contains(t, content.Body, "Fair Price Shop - Ward 12")
	assert.Contains(t, content.Body, "30 Jun 2025")
	assert.Contains(t, content.Body, "500 kg")
}

func TestEmailContentOptionalFields(t *testing.T) {
	alert := testAlert()
	alert.QuantityKg = nil
	msg := "Bring ration card"
	alert.Message = &msg

	content := EmailContent(alert)
	assert.NotContains(t, content.Body, "Quantity")
	assert.Contains(t, content.Body, "Bring ration card")
}

func TestSMSContent(t *testing.T) {
	alert := testAlert()

	content := SMSContent(alert)
	assert.Contains(t, content.Body, "Rice available at Fair Price Shop - Ward 12")
	assert.Contains(t, content.Body, "Qty: 500kg")

	alert.QuantityKg = nil
	content = SMSContent(alert)
	if strings.Contains(content.Body, "Qty:") {
		t.Fatalf("quantity fragment should be omitted when unset: %q", content.Body)
	}
}
