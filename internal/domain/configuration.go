package domain

// GroupConfig is the file form of a tanda group and its what-if events
type GroupConfig struct {
	Name          string      `yaml:"name" json:"name"`
	Market        Market      `yaml:"market" json:"market"`
	ProductID     string      `yaml:"product" json:"product"`
	StartDate     string      `yaml:"start_date,omitempty" json:"startDate,omitempty"`
	HorizonMonths int         `yaml:"horizon_months" json:"horizonMonths"`
	Members       []Member    `yaml:"members" json:"members"`
	Events        []EventSpec `yaml:"events,omitempty" json:"events,omitempty"`
}

// Configuration is the complete input file
type Configuration struct {
	Products   []ProductPackage  `yaml:"products" json:"products"`
	Groups     []GroupConfig     `yaml:"groups" json:"groups"`
	Contracts  []ContratoBase    `yaml:"contracts" json:"contracts"`
	Protection ProtectionOptions `yaml:"protection" json:"protection"`
}

// Product looks up a product package by id
func (c *Configuration) Product(id string) (ProductPackage, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return ProductPackage{}, false
}

// Group looks up a group by name
func (c *Configuration) Group(name string) (*GroupConfig, bool) {
	for i := range c.Groups {
		if c.Groups[i].Name == name {
			return &c.Groups[i], true
		}
	}
	return nil, false
}

// Contract looks up a contract by id
func (c *Configuration) Contract(id string) (*ContratoBase, bool) {
	for i := range c.Contracts {
		if c.Contracts[i].ID == id {
			return &c.Contracts[i], true
		}
	}
	return nil, false
}
