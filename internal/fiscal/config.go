package fiscal

// Model is the fiscal document model code.
type Model int

const (
	ModelNFe  Model = 55
	ModelNFCe Model = 65
)

func (m Model) Valid() bool { return m == ModelNFe || m == ModelNFCe }

func (m Model) String() string {
	switch m {
	case ModelNFe:
		return "NF-e"
	case ModelNFCe:
		return "NFC-e"
	}
	return "unknown"
}

// Environment (tpAmb) a company emits in.
const (
	EnvironmentProduction   = "1"
	EnvironmentHomologation = "2"
)

const DefaultVersion = "4.00"

// Defaults are the settings a freshly registered company starts with:
// homologation, layout 4.00, series 1, numbering from 1.
type Defaults struct {
	Environment   string
	Version       string
	Series        int
	CurrentNumber int
}

func InitialDefaults() Defaults {
	return Defaults{
		Environment:   EnvironmentHomologation,
		Version:       DefaultVersion,
		Series:        1,
		CurrentNumber: 1,
	}
}

// EnvironmentName is the label used by the configuration screens.
func EnvironmentName(env string) string {
	if env == EnvironmentProduction {
		return "producao"
	}
	return "homologacao"
}

// EnvironmentCode is the inverse of EnvironmentName; anything that is not
// production falls back to homologation.
func EnvironmentCode(name string) string {
	if name == "producao" || name == EnvironmentProduction {
		return EnvironmentProduction
	}
	return EnvironmentHomologation
}
