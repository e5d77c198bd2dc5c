package appointment

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Actor is whoever is asking for a mutation. Staff actors carry the id of
// their staff record; customers are identified only by the phone they
// booked with.
type Actor struct {
	Role    Role
	UserID  uint
	StaffID *uint
	Phone   string
}

func Admin(userID uint) Actor {
	return Actor{Role: RoleAdmin, UserID: userID}
}

func StaffMember(userID, staffID uint) Actor {
	return Actor{Role: RoleStaff, UserID: userID, StaffID: &staffID}
}

func Customer(phone string) Actor {
	return Actor{Role: RoleCustomer, Phone: phone}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsStaff reports whether the actor is the given staff member.
func (a Actor) IsStaff(staffID uint) bool {
	return a.Role == RoleStaff && a.StaffID != nil && *a.StaffID == staffID
}

// IsAssignedTo reports whether the actor is the staff member currently
// bound to the appointment.
func (a Actor) IsAssignedTo(staffID *uint) bool {
	return staffID != nil && a.IsStaff(*staffID)
}

func (a Actor) AuditID() *uint {
	switch {
	case a.Role == RoleStaff && a.StaffID != nil:
		id := *a.StaffID
		return &id
	case a.UserID != 0:
		id := a.UserID
		return &id
	}
	return nil
}
