package report

// Config is the shape of a configuration export consumed by the report
// renderer. Unknown fields of the export are ignored.
type Config struct {
	Platform        Platform                      `json:"platform"`
	GlobalSettings  GlobalSettings                `json:"globalSettings"`
	Projects        map[string]ProjectConfig      `json:"projects"`
	Users           map[string]interface{}        `json:"users"`
	QualityProfiles map[string]map[string]Profile `json:"qualityProfiles"`
	Applications    map[string]Application        `json:"applications"`
	Portfolios      map[string]Portfolio          `json:"portfolios"`
}

// Platform identifies the server the export was taken from
type Platform struct {
	URL     string            `json:"url"`
	Version string            `json:"version"`
	Edition string            `json:"edition"`
	Plugins map[string]string `json:"plugins"`
}

// GlobalSettings carries the global sections the report uses
type GlobalSettings struct {
	SASTConfig          map[string]interface{}        `json:"sastConfig"`
	DevopsIntegration   map[string]interface{}        `json:"devopsIntegration"`
	PermissionTemplates map[string]PermissionTemplate `json:"permissionTemplates"`
}

// PermissionTemplate is a global permission template
type PermissionTemplate struct {
	Description string `json:"description"`
	Pattern     string `json:"pattern"`
	DefaultFor  string `json:"defaultFor"`
}

// ProjectConfig is the per-project section of an export
type ProjectConfig struct {
	Name            string            `json:"name"`
	QualityGate     string            `json:"qualityGate"`
	QualityProfiles map[string]string `json:"qualityProfiles"`
	DetectedCI      string            `json:"detectedCi"`
	Binding         Binding           `json:"binding"`
	Ncloc           NclocSection      `json:"ncloc"`
	Issues          IssuesSection     `json:"issues"`
	Hotspots        HotspotsSection   `json:"hotspots"`
	SASTConfig      bool              `json:"sastConfig"`
}

// Binding is a project DevOps platform binding
type Binding struct {
	Key string `json:"key"`
}

// NclocSection holds project LoC totals
type NclocSection struct {
	Total int `json:"total"`
}

// IssuesSection holds the issue counters referenced by the report
type IssuesSection struct {
	InstantiatedRules int            `json:"instantiatedRules"`
	ThirdParty        map[string]int `json:"thirdParty"`
	Accepted          int            `json:"accepted"`
	FalsePositives    int            `json:"falsePositives"`
}

// ThirdPartyTotal sums issues raised by third party plugin rules
func (s IssuesSection) ThirdPartyTotal() int {
	total := 0
	for _, v := range s.ThirdParty {
		total += v
	}
	return total
}

// HotspotsSection holds the hotspot counters referenced by the report
type HotspotsSection struct {
	Safe  int `json:"safe"`
	Fixed int `json:"fixed"`
}

// Profile is a quality profile entry keyed by language then name
type Profile struct {
	IsBuiltIn bool `json:"isBuiltIn"`
}

// Application is an exported application with its branches
type Application struct {
	Name     string                       `json:"name"`
	Branches map[string]ApplicationBranch `json:"branches"`
}

// ApplicationBranch lists the projects selected on one application branch
type ApplicationBranch struct {
	Projects map[string]interface{} `json:"projects"`
}

// Portfolio is an exported portfolio
type Portfolio struct {
	Name string `json:"name"`
}
