package fulfillment

import (
	"fmt"
	"strings"

	"github.com/dining-concierge/server/internal/concierge/model"
)

// Compose builds the recommendation email. Dining time and party size are
// empty for repeat requests and are printed as such.
func Compose(req model.SlotSet, r model.RestaurantDetail) model.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Check out this %s restaurant in %s:\n", req.Cuisine, req.Location)
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Address: %s\n", r.Address)
	fmt.Fprintf(&b, "Dining Time: %s\n", req.DiningTime)
	fmt.Fprintf(&b, "Number of People: %s", req.PartySize)

	return model.Notification{
		To:      req.Email,
		Subject: fmt.Sprintf("Recommended %s Restaurant", req.Cuisine),
		Body:    b.String(),
	}
}
