package format

// Sizes of the fixed-width registry encodings.
const (
	// DWORDSize is the size of REG_DWORD data in bytes.
	DWORDSize = 4

	// QWORDSize is the size of REG_QWORD data in bytes.
	QWORDSize = 8

	// UTF16CodeUnitSize is the size of a UTF-16 code unit in bytes.
	UTF16CodeUnitSize = 2

	// UTF16ASCIIThreshold is the first code unit value outside 7-bit ASCII.
	UTF16ASCIIThreshold = 0x80
)

// DoubleNullTerminator terminates REG_MULTI_SZ data.
var DoubleNullTerminator = []byte{0x00, 0x00}
