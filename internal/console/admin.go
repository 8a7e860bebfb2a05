package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pizza-nz/hotel-service/internal/models"
	"github.com/pizza-nz/hotel-service/internal/service"
)

const (
	lockoutTimeLayout = "2006-01-02 15:04:05"
	deniedMessage     = "Invalid username or password."
)

var securityAlert = []string{
	"[SECURITY ALERT]",
	"WARNING: Unauthorized access detected!",
	"Our security system has detected multiple failed login attempts.",
	"The authorities have been notified, and your IP address has been logged.",
	"Further attempts to breach this system may result in legal action.",
	"You are being monitored. Cease all unauthorized activities immediately.",
	"Do not attempt to access this system again.",
	"Lockout period will be enforced. Thank you for your cooperation.",
}

// adminSession is the signed-in operator. The token is re-validated before
// every action.
type adminSession struct {
	token    string
	username string
	role     models.Role
}

type menuEntry struct {
	section string
	label   string
	// run is nil for the exit entry.
	run func(context.Context) error
}

// adminPanel runs the login loop and the role menu. An expired session
// loops back to login; an explicit exit returns to the main menu.
func (c *Console) adminPanel(ctx context.Context) error {
	for {
		session, err := c.adminLogin(ctx)
		if err != nil {
			return err
		}
		if session == nil {
			c.println("Unauthorized access. Returning to main menu.")
			return nil
		}

		expired, err := c.roleMenu(ctx, session)
		if err != nil {
			return err
		}
		if !expired {
			return nil
		}
		c.println(warningStyle.Render("Your session has expired. Please log in again."))
	}
}

// adminLogin prompts until a login is granted. It returns nil when the
// operator gives up or a master override fails.
func (c *Console) adminLogin(ctx context.Context) (*adminSession, error) {
	overrider := service.OverriderFunc(c.askOverride)

	for {
		username, err := c.ask("Enter admin username: ")
		if err != nil {
			return nil, err
		}
		if username == "" {
			return nil, nil
		}

		password, err := c.askSecret("Enter admin password: ")
		if err != nil {
			return nil, err
		}

		decision, err := c.svc.Auth.Authenticate(ctx, username, password, overrider)
		if errors.Is(err, service.ErrStoreUnavailable) {
			c.fail(err, "")
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		switch decision.Outcome {
		case service.OutcomeGranted:
			c.println(successStyle.Render("Login successful!"))
			return c.startSession(decision)

		case service.OutcomeOverrideGranted:
			c.println(successStyle.Render("Account unlocked successfully!"))
			c.println("Reauthentication required. Please log in again.")

		case service.OutcomeLockedOut:
			c.printf("Account is locked until %s. Please try again later.",
				decision.LockedUntil.Local().Format(lockoutTimeLayout))

		default:
			if decision.Escalate {
				c.raiseSecurityAlert(decision.Username)
				return nil, nil
			}
			// Unknown accounts and bad passwords read the same.
			c.println(deniedMessage)
			if decision.Warning {
				c.log.Warn("next failed attempt locks account", "username", decision.Username)
			}
		}
	}
}

// askOverride runs when an attempt has just locked the account.
func (c *Console) askOverride(_ context.Context, locked *service.Decision) (string, bool, error) {
	c.println(deniedMessage)
	c.println(alertStyle.Render(fmt.Sprintf("Maximum login attempts exceeded (%d/%d). Account locked until %s.",
		locked.Attempts, locked.Threshold, locked.LockedUntil.Local().Format(lockoutTimeLayout))))

	unlock, err := c.confirm("Please call the manager to come over. Would you like to unlock this account? (Y/N) ")
	if err != nil || !unlock {
		return "", false, err
	}

	password, err := c.askSecret("Please enter the master password: ")
	if err != nil {
		return "", false, err
	}
	return password, true, nil
}

func (c *Console) raiseSecurityAlert(username string) {
	c.println()
	for _, line := range securityAlert {
		c.println(alertStyle.Render(line))
	}
	c.log.Warn("security alert raised", "username", username)
}

func (c *Console) startSession(decision *service.Decision) (*adminSession, error) {
	token, err := c.svc.Sessions.Issue(decision.Username, decision.Role)
	if err != nil {
		return nil, err
	}
	return &adminSession{token: token, username: decision.Username, role: decision.Role}, nil
}

// roleMenu shows the menu for the session's role until the operator exits.
// It reports true when the session expired.
func (c *Console) roleMenu(ctx context.Context, session *adminSession) (bool, error) {
	entries := c.menuFor(session.role)
	if entries == nil {
		c.log.Error("account has no usable role", "username", session.username, "role", session.role)
		c.println("A role has not been assigned. Please contact the system administrator.")
		return false, nil
	}

	for {
		c.println()
		c.println(titleStyle.Render("Admin Panel"))
		section := ""
		for i, entry := range entries {
			if entry.section != section {
				section = entry.section
				c.printf("---- %s ----", section)
			}
			c.printf("%d. %s", i+1, entry.label)
		}

		choice, ok, err := c.askInt("Enter your choice: ")
		if err != nil {
			return false, err
		}
		if !ok || choice < 1 || choice > len(entries) {
			c.println("Invalid choice. Please try again.")
			continue
		}

		if _, err := c.svc.Sessions.Validate(session.token); err != nil {
			c.log.Info("admin session rejected", "username", session.username, "error", err)
			return true, nil
		}

		entry := entries[choice-1]
		if entry.run == nil {
			return false, nil
		}
		if err := entry.run(ctx); err != nil {
			return false, err
		}
	}
}

func (c *Console) menuFor(role models.Role) []menuEntry {
	const (
		reservations = "Reservations"
		items        = "Items"
		users        = "Users"
		discounts    = "Discounts"
		other        = "Other"
	)

	switch role {
	case models.RoleStaff:
		return []menuEntry{
			{reservations, "Add Reservation", c.addReservation},
			{reservations, "View Reservations", c.viewReservations},
			{reservations, "Edit Reservation", c.editReservation},
			{reservations, "Delete Reservation", c.deleteReservation},
			{reservations, "Search Reservations", c.searchReservations},
			{reservations, "Exit Admin Panel", nil},
		}
	case models.RoleManager:
		return []menuEntry{
			{reservations, "Add Reservation", c.addReservation},
			{reservations, "Delete Reservation", c.deleteReservation},
			{reservations, "Edit Reservation", c.editReservation},
			{reservations, "View Reservations", c.viewReservations},
			{reservations, "Search Reservations", c.searchReservations},
			{items, "Add Item", c.addItem},
			{items, "Delete Item", c.deleteItem},
			{items, "Update Item", c.updateItem},
			{items, "View Items", c.viewItems},
			{users, "View Users", c.viewUsers},
			{discounts, "View Discount Codes", c.viewDiscounts},
			{other, "Exit Admin Panel", nil},
		}
	case models.RoleAdmin:
		return []menuEntry{
			{reservations, "Add Reservation", c.addReservation},
			{reservations, "Delete Reservation", c.deleteReservation},
			{reservations, "Edit Reservation", c.editReservation},
			{reservations, "View Reservations", c.viewReservations},
			{reservations, "Search Reservations", c.searchReservations},
			{items, "Add Item", c.addItem},
			{items, "Delete Item", c.deleteItem},
			{items, "Update Item", c.updateItem},
			{items, "View Items", c.viewItems},
			{users, "Add User", c.addUser},
			{users, "Delete User", c.deleteUser},
			{users, "Edit User", c.editUser},
			{users, "View Users", c.viewUsers},
			{users, "Reset User Password", c.resetUserPassword},
			{discounts, "Manage Discount Codes", c.manageDiscountCodes},
			{other, "Exit Admin Panel", nil},
		}
	default:
		return nil
	}
}

// Reservations

func (c *Console) addReservation(ctx context.Context) error {
	roomNumber, err := c.ask("Enter room number (floor + 3-digit code): ")
	if err != nil {
		return err
	}
	lastName, err := c.ask("Enter last name: ")
	if err != nil {
		return err
	}
	firstName, err := c.ask("Enter first name: ")
	if err != nil {
		return err
	}

	reservation, err := c.svc.Reservations.CreateReservation(ctx, models.ReservationRequest{
		RoomNumber: roomNumber,
		LastName:   lastName,
		FirstName:  firstName,
	})
	if errors.Is(err, service.ErrConflict) {
		c.printf("Room number %s is already occupied.", roomNumber)
		return nil
	}
	if c.fail(err, "") {
		return nil
	}

	c.printf("Reservation for room %s on floor %d added successfully.", reservation.RoomNumber, reservation.Floor)
	return nil
}

func (c *Console) deleteReservation(ctx context.Context) error {
	roomNumber, err := c.ask("Enter room number (floor + 3-digit code) to delete: ")
	if err != nil {
		return err
	}

	err = c.svc.Reservations.DeleteReservation(ctx, roomNumber)
	if c.fail(err, "No reservation found with that room number.") {
		return nil
	}

	c.printf("Reservation for room %s deleted successfully.", roomNumber)
	return nil
}

func (c *Console) editReservation(ctx context.Context) error {
	roomNumber, err := c.ask("Enter the current room number (floor + 3-digit code) of the reservation to edit: ")
	if err != nil {
		return err
	}

	found, err := c.svc.Reservations.SearchByRoom(ctx, roomNumber)
	if c.fail(err, "") {
		return nil
	}
	if len(found) == 0 {
		c.println("No reservation found with that room number.")
		return nil
	}
	c.println("Current reservation details: " + reservationDetails(found[0]))

	var req models.ReservationUpdateRequest
	if req.RoomNumber, err = c.ask("Enter new room number (floor + 3-digit code) (leave blank to keep current): "); err != nil {
		return err
	}
	if req.LastName, err = c.ask("Enter new last name (leave blank to keep current): "); err != nil {
		return err
	}
	if req.FirstName, err = c.ask("Enter new first name (leave blank to keep current): "); err != nil {
		return err
	}

	updated, err := c.svc.Reservations.UpdateReservation(ctx, roomNumber, req)
	if errors.Is(err, service.ErrConflict) {
		c.printf("Room number %s is already occupied.", req.RoomNumber)
		return nil
	}
	if c.fail(err, "No reservation found with that room number.") {
		return nil
	}

	c.printf("Reservation for room %s updated successfully.", roomNumber)
	c.println("New details: " + reservationDetails(*updated))
	return nil
}

func (c *Console) viewReservations(ctx context.Context) error {
	reservations, err := c.svc.Reservations.GetReservations(ctx)
	if c.fail(err, "") {
		return nil
	}

	c.println("Reservations")
	for _, reservation := range reservations {
		c.println(reservationDetails(reservation))
	}
	return nil
}

func (c *Console) searchReservations(ctx context.Context) error {
	searchType, err := c.ask("Search by room number (RN)/last name(LN): ")
	if err != nil {
		return err
	}

	var found []models.Reservation
	switch strings.ToLower(searchType) {
	case "rn":
		roomNumber, err := c.ask("Enter the room number: ")
		if err != nil {
			return err
		}
		found, err = c.svc.Reservations.SearchByRoom(ctx, roomNumber)
		if c.fail(err, "") {
			return nil
		}
	case "ln":
		lastName, err := c.ask("Enter the last name: ")
		if err != nil {
			return err
		}
		found, err = c.svc.Reservations.SearchByLastName(ctx, lastName)
		if c.fail(err, "") {
			return nil
		}
	default:
		c.println("Invalid search type.")
		return nil
	}

	if len(found) == 0 {
		c.println("No reservations found.")
		return nil
	}
	c.println("Search Results:")
	for _, reservation := range found {
		c.printf("Room Number: %s, Last Name: %s, First Name: %s", reservation.RoomNumber, reservation.LastName, reservation.FirstName)
	}
	return nil
}

func reservationDetails(r models.Reservation) string {
	return fmt.Sprintf("Room Number: %s, Floor: %d, Last Name: %s, First Name: %s", r.RoomNumber, r.Floor, r.LastName, r.FirstName)
}

// Items

func (c *Console) askItem(idPrompt, namePrompt, pricePrompt string) (*models.ItemRequest, error) {
	id, ok, err := c.askInt(idPrompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.println("Invalid item ID.")
		return nil, nil
	}

	name, err := c.ask(namePrompt)
	if err != nil {
		return nil, err
	}

	price, ok, err := c.askFloat(pricePrompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.println("Invalid item price.")
		return nil, nil
	}

	answer, err := c.ask("Enter pricing rule (None/Peak/OffPeak): ")
	if err != nil {
		return nil, err
	}
	rule, ok := models.ParsePricingRule(answer)
	if !ok {
		c.println("Invalid pricing rule.")
		return nil, nil
	}

	return &models.ItemRequest{ID: id, Name: name, Price: price, PricingRule: rule}, nil
}

func (c *Console) addItem(ctx context.Context) error {
	req, err := c.askItem("Enter item ID: ", "Enter item name: ", "Enter item price: ")
	if err != nil || req == nil {
		return err
	}

	item, err := c.svc.Catalog.CreateItem(ctx, *req)
	if c.fail(err, "") {
		return nil
	}

	c.printf("Item '%s' added successfully with ID %d.", item.Name, item.ID)
	return nil
}

func (c *Console) deleteItem(ctx context.Context) error {
	id, ok, err := c.askInt("Enter item ID to delete: ")
	if err != nil {
		return err
	}
	if !ok {
		c.println("Invalid item ID.")
		return nil
	}

	err = c.svc.Catalog.DeleteItem(ctx, id)
	if c.fail(err, "Item not found.") {
		return nil
	}

	c.printf("Item with ID %d deleted successfully.", id)
	return nil
}

func (c *Console) updateItem(ctx context.Context) error {
	req, err := c.askItem("Enter the item ID to update: ", "Enter the new item name: ", "Enter the new item price: ")
	if err != nil || req == nil {
		return err
	}

	item, err := c.svc.Catalog.UpdateItem(ctx, *req)
	if c.fail(err, "Item not found.") {
		return nil
	}

	c.printf("Item with ID %d updated successfully.", item.ID)
	return nil
}

func (c *Console) viewItems(ctx context.Context) error {
	items, err := c.svc.Catalog.GetItems(ctx)
	if c.fail(err, "") {
		return nil
	}

	c.println("Items")
	for _, item := range items {
		c.printf("Item ID: %d, Name: %s, Price: %s, Pricing Rule: %s", item.ID, item.Name, money(item.Price), item.PricingRule)
	}
	return nil
}

// Users

func (c *Console) addUser(ctx context.Context) error {
	username, err := c.ask("Enter new username: ")
	if err != nil {
		return err
	}
	password, err := c.askSecret("Enter new password: ")
	if err != nil {
		return err
	}

	var role models.Role
	for {
		answer, err := c.ask("Enter the role (a)dmin/(s)taff/(m)anager: ")
		if err != nil {
			return err
		}
		var ok bool
		if role, ok = models.ParseRole(answer); ok {
			break
		}
		c.println("Invalid role. Please try again.")
	}

	account, err := c.svc.Accounts.CreateAccount(ctx, models.AccountRequest{
		Username: username,
		Password: password,
		Role:     role,
	})
	if errors.Is(err, service.ErrConflict) {
		c.printf("User '%s' already exists.", username)
		return nil
	}
	if c.fail(err, "") {
		return nil
	}

	c.printf("User '%s' added successfully.", account.Username)
	return nil
}

func (c *Console) deleteUser(ctx context.Context) error {
	username, err := c.ask("Enter username to delete: ")
	if err != nil {
		return err
	}

	err = c.svc.Accounts.DeleteAccount(ctx, username)
	if c.fail(err, "No user found with that username.") {
		return nil
	}

	c.printf("User '%s' deleted successfully.", username)
	return nil
}

func (c *Console) editUser(ctx context.Context) error {
	username, err := c.ask("Enter the username of the user to edit: ")
	if err != nil {
		return err
	}

	var req models.AccountUpdateRequest
	if req.Username, err = c.ask("Enter new username (leave blank to keep current): "); err != nil {
		return err
	}
	if req.Password, err = c.askSecret("Enter new password (leave blank to keep current): "); err != nil {
		return err
	}

	_, err = c.svc.Accounts.UpdateAccount(ctx, username, req)
	if errors.Is(err, service.ErrConflict) {
		c.printf("User '%s' already exists.", req.Username)
		return nil
	}
	if c.fail(err, "No user found with that username.") {
		return nil
	}

	c.printf("User '%s' updated successfully.", username)
	return nil
}

func (c *Console) viewUsers(ctx context.Context) error {
	detailed, err := c.confirm("Would you like to see account lockout details? (Y/N): ")
	if err != nil {
		return err
	}

	if detailed {
		password, err := c.askSecret("Please enter the master password: ")
		if err != nil {
			return err
		}

		listing, err := c.svc.Accounts.ListAccountsDetailed(ctx, password)
		switch {
		case errors.Is(err, service.ErrMasterMismatch):
			c.println("Incorrect master password. Cannot display account details.")
		case c.fail(err, ""):
			return nil
		default:
			c.println("Master password is correct. Displaying account details.")
			c.printListing(listing, true)
			return nil
		}
	}

	return c.listUsers(ctx)
}

func (c *Console) listUsers(ctx context.Context) error {
	listing, err := c.svc.Accounts.ListAccounts(ctx)
	if c.fail(err, "") {
		return nil
	}
	c.printListing(listing, false)
	return nil
}

func (c *Console) printListing(listing *service.AccountListing, detailed bool) {
	c.println("Users and Roles")
	for _, account := range listing.Accounts {
		if !detailed {
			c.printf("Username: %s, Role: %s", account.Username, account.Role)
			continue
		}

		lockedUntil := "-"
		if account.LockoutTime != nil {
			lockedUntil = account.LockoutTime.Local().Format(lockoutTimeLayout)
		}
		c.printf("Username: %s, Role: %s, Failed Attempts: %d, Locked Until: %s",
			account.Username, account.Role, account.FailedAttempts, lockedUntil)
	}
	for i := 0; i < listing.Skipped; i++ {
		c.println("An account was skipped for security reasons.")
	}
}

func (c *Console) resetUserPassword(ctx context.Context) error {
	c.println("List of Users:")
	if err := c.listUsers(ctx); err != nil {
		return err
	}

	username, err := c.ask("Enter the username to reset password: ")
	if err != nil {
		return err
	}
	password, err := c.askSecret("Enter new password: ")
	if err != nil {
		return err
	}

	err = c.svc.Accounts.ResetPassword(ctx, username, password)
	if c.fail(err, "User not found.") {
		return nil
	}

	c.printf("Password for user '%s' has been reset successfully.", username)
	return nil
}

// Discounts

func (c *Console) viewDiscounts(ctx context.Context) error {
	discounts, err := c.svc.Discounts.GetDiscounts(ctx)
	if c.fail(err, "") {
		return nil
	}

	if len(discounts) == 0 {
		c.println("No discount codes found.")
		return nil
	}
	c.println("Current Discount Codes:")
	for _, discount := range discounts {
		c.printf("Code: %s, Percentage: %g%%", discount.Code, discount.Percentage)
	}
	return nil
}

func (c *Console) manageDiscountCodes(ctx context.Context) error {
	for {
		c.println()
		c.println(titleStyle.Render("Discount Code Management:"))
		c.println("1. Add Discount Code")
		c.println("2. Update Discount Code")
		c.println("3. Delete Discount Code")
		c.println("4. View Discount Codes")
		c.println("5. Exit Discount Management")

		choice, err := c.ask("Enter your choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			err = c.addDiscount(ctx)
		case "2":
			err = c.updateDiscount(ctx)
		case "3":
			err = c.deleteDiscount(ctx)
		case "4":
			err = c.viewDiscounts(ctx)
		case "5":
			return nil
		default:
			c.println("Invalid choice. Please try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) addDiscount(ctx context.Context) error {
	last, err := c.svc.Discounts.Last(ctx)
	if c.fail(err, "") {
		return nil
	}
	lastCode := "None"
	if last != nil {
		lastCode = last.Code
	}
	c.printf("Last discount code: %s", lastCode)

	code, err := c.ask("Enter new discount code: ")
	if err != nil {
		return err
	}
	percentage, ok, err := c.askFloat("Enter discount percentage: ")
	if err != nil {
		return err
	}
	if !ok {
		c.println("Invalid discount percentage.")
		return nil
	}

	discount, err := c.svc.Discounts.CreateDiscount(ctx, code, percentage)
	if errors.Is(err, service.ErrConflict) {
		c.printf("Discount code '%s' already exists.", code)
		return nil
	}
	if c.fail(err, "") {
		return nil
	}

	c.printf("Discount code '%s' added successfully.", discount.Code)
	return nil
}

func (c *Console) updateDiscount(ctx context.Context) error {
	if err := c.viewDiscounts(ctx); err != nil {
		return err
	}

	code, err := c.ask("Enter discount code to update: ")
	if err != nil {
		return err
	}
	percentage, ok, err := c.askFloat("Enter new discount percentage: ")
	if err != nil {
		return err
	}
	if !ok {
		c.println("Invalid percentage.")
		return nil
	}

	err = c.svc.Discounts.UpdateDiscount(ctx, code, percentage)
	if c.fail(err, "Discount code not found.") {
		return nil
	}

	c.printf("Discount code '%s' updated successfully.", code)
	return nil
}

func (c *Console) deleteDiscount(ctx context.Context) error {
	if err := c.viewDiscounts(ctx); err != nil {
		return err
	}

	code, err := c.ask("Enter discount code to delete: ")
	if err != nil {
		return err
	}

	err = c.svc.Discounts.DeleteDiscount(ctx, code)
	if c.fail(err, "Discount code not found.") {
		return nil
	}

	c.printf("Discount code '%s' deleted successfully.", code)
	return nil
}
