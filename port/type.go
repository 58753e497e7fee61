package port

// MacroPort is the Zabbix LLD macro every discovered entry is keyed by.
const MacroPort = "{#STRATUM.PORT}"

// DiscoveryEntry is one row of the discovery document.
type DiscoveryEntry map[string]string

// Discovery is the low-level discovery document: {"data": [...]}.
type Discovery struct {
	Data []DiscoveryEntry `json:"data"`
}

// NewDiscovery builds the discovery document for the given port tokens.
// Data is never nil so an empty list encodes as [] rather than null.
func NewDiscovery(ports []string) Discovery {
	d := Discovery{Data: make([]DiscoveryEntry, 0, len(ports))}
	for _, p := range ports {
		d.Data = append(d.Data, DiscoveryEntry{MacroPort: p})
	}
	return d
}
