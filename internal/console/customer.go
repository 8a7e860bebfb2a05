package console

import (
	"context"
	"errors"
	"strings"

	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/payment"
	"github.com/pizza-nz/hotel-service/internal/service"
)

var amenities = []string{
	"Complimentary high-speed Wi-Fi throughout the premises",
	"Fully equipped fitness center",
	"Sparkling swimming pool",
	"24/7 room service",
	"Gourmet restaurant",
	"Business center with meeting rooms",
	"24-hour front desk assistance",
	"Complimentary breakfast for premium guests",
}

var promotions = []string{
	"Enjoy 15% off on all room service orders above $50!",
	"Summer Special: Book a spa session and get a free fitness class!",
	"Loyalty Bonus: Earn extra points for every dine-in meal!",
}

func (c *Console) customerPanel(ctx context.Context) error {
	for {
		c.println()
		c.println(titleStyle.Render("Customer Menu:"))
		c.println("1. Check In")
		c.println("2. Place Order")
		c.println("3. Check Out")
		c.println("4. View Amenities")
		c.println("5. Provide Feedback")
		c.println("6. View Promotions")
		c.println("7. Join Loyalty Program")
		c.println("8. Track Order Status")
		c.println("9. Contact Concierge")
		c.println("10. Exit Customer Menu")

		choice, err := c.ask("Enter your choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.checkIn(ctx)
		case "2":
			err = c.placeOrder(ctx)
		case "3":
			err = c.checkOut(ctx)
		case "4":
			c.viewAmenities()
		case "5":
			err = c.provideFeedback()
		case "6":
			c.viewPromotions()
		case "7":
			c.println("Loyalty Program is currently unavailable.")
		case "8":
			err = c.trackOrder(ctx)
		case "9":
			err = c.contactConcierge()
		case "10":
			return nil
		default:
			c.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return err
		}
	}
}

// matchGuest repeats the last name and room prompts until a reservation
// matches. A blank last name gives up and returns nil.
func (c *Console) matchGuest(ctx context.Context) (*models.Reservation, error) {
	chooser := service.ChooserFunc(c.chooseReservation)

	for {
		lastName, err := c.ask("Please enter your last name: ")
		if err != nil {
			return nil, err
		}
		if lastName == "" {
			return nil, nil
		}
		roomNumber, err := c.ask("Please enter your room number (floor + 3-digit code): ")
		if err != nil {
			return nil, err
		}

		reservation, err := c.svc.Matcher.Match(ctx, lastName, roomNumber, chooser)
		var validation *service.ValidationError
		switch {
		case err == nil:
			c.println("Please wait while we validate your room number and last name.")
			return reservation, nil
		case errors.Is(err, service.ErrNotFound):
			c.println("No reservations found with that last name. Please try again.")
		case errors.Is(err, service.ErrRoomMismatch):
			c.println("Room number does not match the selected reservation. Please try again.")
		case errors.As(err, &validation):
			c.println("Invalid selection. Please try again.")
		case errors.Is(err, service.ErrStoreUnavailable):
			c.fail(err, "")
			return nil, nil
		default:
			return nil, err
		}
	}
}

func (c *Console) chooseReservation(_ context.Context, candidates []models.Reservation) (int, error) {
	c.println("Available reservations with the same last name:")
	for i, reservation := range candidates {
		c.printf("%d. Room Number: %s, First Name: %s", i+1, reservation.RoomNumber, reservation.FirstName)
	}

	choice, ok, err := c.askInt("Please select the reservation number: ")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &service.ValidationError{Field: "selection", Reason: "must be a number"}
	}
	return choice, nil
}

func (c *Console) checkIn(ctx context.Context) error {
	reservation, err := c.matchGuest(ctx)
	if err != nil {
		return err
	}
	if reservation == nil {
		c.println("Check-in failed. Please contact the front desk for assistance.")
		c.println("Error: 0x0201 Invalid room number or last name.")
		return nil
	}

	c.println("Checking in...")
	c.println("Room number and key card are being prepared...")
	c.printf("Your room number is %s.", reservation.RoomNumber)
	c.println("Your key card is ready for use.")
	c.println(successStyle.Render("Check-in successful! Welcome to " + c.opts.HotelName + ", " + capitalize(reservation.FirstName) + "!"))
	c.println("Please enjoy your stay!")
	c.printf("If you need assistance, please call the front desk at %s-56.", reservation.RoomNumber)
	c.println()
	c.viewAmenities()

	c.log.Info("guest checked in", "room", reservation.RoomNumber)
	return nil
}

func (c *Console) placeOrder(ctx context.Context) error {
	c.println("Welcome to the ordering system!")

	reservation, err := c.matchGuest(ctx)
	if err != nil {
		return err
	}
	if reservation == nil {
		c.println("Invalid room number or last name. Please try again.")
		return nil
	}
	c.printf("Welcome, %s! Room %s validated successfully.", capitalize(reservation.FirstName), reservation.RoomNumber)

	draft := c.svc.Orders.NewDraft(reservation)
	for {
		if err := c.showMenu(ctx); err != nil {
			c.fail(err, "")
			return nil
		}

		itemID, ok, err := c.askInt("Which service/item do you want? ")
		if err != nil {
			return err
		}
		if !ok {
			c.println("Invalid input. Please enter a number.")
			continue
		}

		quantity, err := c.askQuantity()
		if err != nil {
			return err
		}

		line, err := c.svc.Orders.AddLine(ctx, draft, itemID, quantity)
		if errors.Is(err, service.ErrStoreUnavailable) {
			c.fail(err, "")
			return nil
		}
		if c.fail(err, "Item not found. Please try again.") {
			continue
		}
		c.printf("Total so far: %s", money(draft.Subtotal()))
		c.printf("Redemption code for item %d: %s", line.ItemID, line.RedemptionCode)

		another, err := c.askAnother()
		if err != nil {
			return err
		}
		if !another {
			break
		}
	}

	wantsDiscount, err := c.confirm("Do you have a discount code? (Y/N): ")
	if err != nil {
		return err
	}
	if wantsDiscount {
		code, err := c.ask("Enter discount code: ")
		if err != nil {
			return err
		}
		err = c.svc.Orders.ApplyDiscount(ctx, draft, code)
		if !c.fail(err, "Invalid discount code.") {
			c.printf("Discount applied! New total amount: %s", money(draft.Total()))
		}
	}

	c.println("End of transaction")
	c.printf("Your total is %s and will be delivered to room %s", money(draft.Total()), draft.RoomNumber)
	c.println("Your redemption codes are:")
	for _, line := range draft.Lines {
		c.printf("Item ID %d: %s", line.ItemID, line.RedemptionCode)
	}

	for {
		paid, err := c.collectPayment(c.svc.Orders.AmountDue(draft))
		if err != nil {
			return err
		}
		if paid {
			break
		}
		retry, err := c.confirm("Payment failed. Would you like to try again? (Y/N): ")
		if err != nil {
			return err
		}
		if !retry {
			c.println("Your order was not placed.")
			return nil
		}
	}

	order, err := c.svc.Orders.PlaceOrder(ctx, draft)
	if c.fail(err, "") {
		return nil
	}

	c.println(successStyle.Render("Thank you for your order!"))
	c.printf("Your order ID is %s.", order.ID)
	c.println("Your order will be delivered shortly.")
	return nil
}

func (c *Console) showMenu(ctx context.Context) error {
	menu, err := c.svc.Pricing.Menu(ctx)
	if err != nil {
		return err
	}
	c.println("Available services/items:")
	for _, item := range menu {
		c.printf("ID: %d, Name: %s, Price: %s", item.ID, item.Name, money(item.Effective))
	}
	return nil
}

func (c *Console) askQuantity() (int, error) {
	for {
		quantity, ok, err := c.askInt("How many? ")
		if err != nil {
			return 0, err
		}
		if ok && quantity > 0 {
			return quantity, nil
		}
		c.println("Invalid quantity. Please enter a positive number.")
	}
}

func (c *Console) askAnother() (bool, error) {
	for {
		answer, err := c.ask("Would you like to order another service/item? (Yes/No) ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "yes", "y":
			return true, nil
		case "no", "n":
			return false, nil
		}
		c.println("Please answer Yes or No.")
	}
}

// collectPayment validates the card for amount, tax included.
func (c *Console) collectPayment(amount float64) (bool, error) {
	c.printf("Processing credit card payment of %s...", money(amount))

	var card payment.Card
	var err error

	if card.Number, err = c.ask("Enter your credit card number: "); err != nil {
		return false, err
	}
	if !payment.ValidNumber(card.Number) {
		c.println("Invalid credit card number. Payment Cancelled.")
		return false, nil
	}

	if card.Expiry, err = c.ask("Enter your credit card expiration date (MM/YYYY): "); err != nil {
		return false, err
	}
	if !payment.ValidExpiry(card.Expiry, c.opts.Clock()) {
		c.println("Invalid or expired credit card expiration date. Payment Cancelled.")
		return false, nil
	}

	if card.CVV, err = c.askSecret("Enter your credit card CVV: "); err != nil {
		return false, err
	}
	if err := payment.Validate(card, c.opts.Clock()); err != nil {
		c.println("Invalid CVV. Payment Cancelled.")
		return false, nil
	}

	return true, nil
}

func (c *Console) checkOut(ctx context.Context) error {
	lastName, err := c.ask("Please enter your last name: ")
	if err != nil {
		return err
	}
	roomNumber, err := c.ask("Please enter your room number (floor + 3-digit code): ")
	if err != nil {
		return err
	}

	reservation, err := c.svc.Reservations.CheckOut(ctx, lastName, roomNumber)
	if c.fail(err, "No matching reservation found for check-out.") {
		return nil
	}

	c.println(successStyle.Render("Check-out successful for room " + reservation.RoomNumber + ". Thanks for visiting " +
		c.opts.HotelName + ", " + capitalize(reservation.FirstName) + "! We hope to see you again soon!"))
	c.log.Info("guest checked out", "room", reservation.RoomNumber)

	bill, err := c.confirm("Would you like to generate your bill? (Y/N): ")
	if err != nil {
		return err
	}
	if bill {
		return c.billingCreator()
	}
	return nil
}

func (c *Console) billingCreator() error {
	c.println()
	c.println(titleStyle.Render("--- Billing Creator ---"))
	c.println("Enter your charges. Type 'done' for description to finish.")

	var charges []service.Charge
	for {
		description, err := c.ask("Enter charge description (or 'done' to finish): ")
		if err != nil {
			return err
		}
		if description == "" || strings.EqualFold(description, "done") {
			break
		}

		amount, ok, err := c.askFloat("Enter amount for this charge: ")
		if err != nil {
			return err
		}
		if !ok {
			c.println("Invalid amount. Please try again.")
			continue
		}
		charges = append(charges, service.Charge{Description: description, Amount: amount})
	}

	receipt := service.BuildReceipt(charges, c.svc.Orders.TaxRate())

	c.println()
	c.println("----- Receipt -----")
	for _, charge := range receipt.Charges {
		c.printf("%s: %s", charge.Description, money(charge.Amount))
	}
	c.printf("Subtotal: %s", money(receipt.Subtotal))
	c.printf("Tax (Tax Rate: %.0f%%): %s", receipt.TaxRate*100, money(receipt.Tax))
	c.printf("Total Amount: %s", money(receipt.Total))
	c.println("-------------------")
	return nil
}

func (c *Console) viewAmenities() {
	c.println("Hotel Amenities:")
	for _, amenity := range amenities {
		c.println("- " + amenity)
	}
}

func (c *Console) viewPromotions() {
	c.println()
	c.println("Current Promotions:")
	for _, promotion := range promotions {
		c.println("- " + promotion)
	}
}

func (c *Console) provideFeedback() error {
	c.println()
	c.println("We value your feedback!")

	rating, ok, err := c.askInt("Please rate our service on a scale of 1-5: ")
	if err != nil {
		return err
	}
	if !ok || rating < 1 || rating > 5 {
		c.println("Invalid rating. Please enter a number between 1 and 5.")
		return nil
	}

	comment, err := c.ask("Please provide any additional comments: ")
	if err != nil {
		return err
	}

	c.println("Thank you for your feedback!")
	c.printf("Rating: %d, Comments: %s", rating, comment)
	c.log.Info("guest feedback", "rating", rating, "comment", comment)
	return nil
}

func (c *Console) trackOrder(ctx context.Context) error {
	c.println()
	c.println("Track Order Status")

	orderID, err := c.ask("Enter your order ID: ")
	if err != nil {
		return err
	}

	order, err := c.svc.Orders.GetOrder(ctx, orderID)
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		c.println("Invalid order ID. Please check your receipt and try again.")
		return nil
	}
	if c.fail(err, "Order not found. Please contact concierge for assistance.") {
		return nil
	}

	c.printf("Order ID %s status: %s", order.ID, order.Status)
	c.println(order.Status.Describe())
	return nil
}

func (c *Console) contactConcierge() error {
	c.println()
	c.println("Contact Concierge")

	message, err := c.ask("Enter your message for our concierge: ")
	if err != nil {
		return err
	}

	c.println("Your message has been sent. A concierge will get back to you shortly.")
	c.println("Your message: " + message)
	c.log.Info("concierge message", "message", message)
	return nil
}
