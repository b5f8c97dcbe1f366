package live

const (
	inlineKeyboardTimes    = "Times"
	inlineKeyboardSectors  = "Sectors"
	inlineKeyboardCompound = "Tyres"
	inlineKeyboardGaps     = "Gaps"
	inlineKeyboardUpdate   = "Update"

	symbolTimes    = "⏱"
	symbolSectors  = "🔂"
	symbolCompound = "🛞"
	symbolGaps     = "⏲️"
	symbolUpdate   = "🔄"

	tableDriver = "DRV"
	noSession   = "No live session right now"
)
