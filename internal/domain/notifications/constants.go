package notifications

const (
	TypeShiftAutoClosed = "shift_auto_closed"
	TypeLongShift       = "long_shift"
	TypeEntryEdited     = "entry_edited"
	TypeEntryDeleted    = "entry_deleted"
)
