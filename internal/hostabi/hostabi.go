// Package hostabi is a pure, no-I/O resolver from a host-runtime helper
// function's name to the integer id the code generator emits in a `call`
// instruction's immediate field, per §6.3. The host runtime itself — the
// thing that actually implements `log`, `memcpy`, and friends at those ids
// — is an external collaborator; this package only documents the
// name<->id contract the two sides have to agree on.
package hostabi

// Helper is one entry in the recognized helper table.
type Helper struct {
	Name string
	ID   int32
}

// Table enumerates the helpers §6.3 lists "for interoperability
// reference only". IDs are assigned in listed order; a real host runtime
// is free to use a different numbering as long as both sides load the
// same table, which is why this is data, not a hardcoded switch.
var Table = []Helper{
	{Name: "log", ID: 1},
	{Name: "read_u64_le", ID: 2},
	{Name: "write_u64_le", ID: 3},
	{Name: "memcpy", ID: 4},
	{Name: "memset", ID: 5},
}

var byName = func() map[string]int32 {
	m := make(map[string]int32, len(Table))
	for _, h := range Table {
		m[h.Name] = h.ID
	}
	return m
}()

// ID looks up a helper's call id by name.
func ID(name string) (int32, bool) {
	id, ok := byName[name]
	return id, ok
}
