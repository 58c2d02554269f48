// Package accountlayout documents the 104-byte account-record layout from
// §6.4. The core compiler does not parse or marshal account records — the
// host runtime that loads a compiled program's accounts does — but a
// source type named CAccountInfo is expected to agree with this layout
// field-for-field, and that is something this repo's tests can check
// without touching the host runtime at all.
package accountlayout

// Field describes one member of the CAccountInfo record.
type Field struct {
	Name   string
	Offset int
	Size   int
}

// RecordSize is the fixed size of one account record, per §6.4.
const RecordSize = 104

// Fields lists the record layout in declaration order. The final entry is
// the 14 bytes of padding needed to round the record up to 104 bytes.
var Fields = []Field{
	{Name: "key", Offset: 0, Size: 32},
	{Name: "lamports", Offset: 32, Size: 8},
	{Name: "data_len", Offset: 40, Size: 8},
	{Name: "data", Offset: 48, Size: 8},
	{Name: "owner", Offset: 56, Size: 32},
	{Name: "is_signer", Offset: 88, Size: 1},
	{Name: "is_writable", Offset: 89, Size: 1},
	{Name: "_padding", Offset: 90, Size: 14},
}

// Offset returns the byte offset of the named field, and false if no such
// field exists in the layout.
func Offset(name string) (int, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}
