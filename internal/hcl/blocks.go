package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Settings    []*settingsBlock   `hcl:"settings,block"`
	Credentials []*credentialBlock `hcl:"credential,block"`
	Tasks       []*taskBlock       `hcl:"task,block"`
	Remain      hcl.Body           `hcl:",remain"`
}

// settingsBlock is decoded attribute by attribute, see translateSettings.
type settingsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// credentialBlock holds one token. Identifier and password are base64.
type credentialBlock struct {
	Kind       string `hcl:"kind,label"`
	Identifier string `hcl:"identifier"`
	Password   string `hcl:"password,optional"`
	Service    string `hcl:"service,optional"`
}

// taskBlock describes one unit of work. Payload is base64. Endpoints may be
// given as blocks, as "host:port" lists, or both; blocks come first.
type taskBlock struct {
	ID            string           `hcl:"id,label"`
	Payload       string           `hcl:"payload"`
	LocationAddrs []string         `hcl:"locations,optional"`
	WorkerAddrs   []string         `hcl:"workers,optional"`
	Locations     []*endpointBlock `hcl:"location,block"`
	Workers       []*endpointBlock `hcl:"worker,block"`
}

type endpointBlock struct {
	Host string `hcl:"host"`
	Port int    `hcl:"port"`
}
