package internal

type ItemStatus string

// Statuses are the operator-facing labels and travel unchanged into exports.
const (
	StatusOK            ItemStatus = "OK"
	StatusMissingWeight ItemStatus = "POIDS_MANQUANT"
	StatusNotFound      ItemStatus = "NON_TROUVEE"
)

type UpsertAction string

const (
	ActionInserted UpsertAction = "ajout"
	ActionUpdated  UpsertAction = "mise à jour"
)

// Address is reconstructed from the delivery block by line-count heuristics;
// RawBlock keeps the full text for audit when the heuristic guesses wrong.
type Address struct {
	FullName string `json:"nom_complet"`
	Street   string `json:"rue"`
	City     string `json:"ville"`
	Country  string `json:"pays"`
	Phone    string `json:"telephone"`
	RawBlock string `json:"adresse_complete"`
}

// LineItem starts as the raw parsed triple (ref, description, quantity);
// enrichment fills the EHS fields and the status.
type LineItem struct {
	ProzonRef   string `json:"reference_prozon"`
	Description string `json:"description"`
	Quantity    int    `json:"quantite"`

	EHSRef      *string    `json:"reference_ehs,omitempty"`
	EHSName     *string    `json:"nom_produit_ehs,omitempty"`
	UnitWeight  *float64   `json:"poids_unitaire,omitempty"`
	UnitPrice   *float64   `json:"prix_unitaire,omitempty"`
	TotalWeight *float64   `json:"poids_total,omitempty"`
	Status      ItemStatus `json:"statut,omitempty"`
}

// Order is built fresh per document. Empty string fields mean the marker
// was absent from the document.
type Order struct {
	Number    string     `json:"numero_commande"`
	Reference string     `json:"ref_commande"`
	Date      string     `json:"date"`
	Address   Address    `json:"adresse"`
	Items     []LineItem `json:"produits"`
}

// CatalogEntry is one row of the cross-reference table. ProzonRef is not
// unique; several rows may share a code (variants, price tiers).
type CatalogEntry struct {
	ProzonRef   string
	ProductName string
	EHSRef      string
	Price       *float64
	Weight      *float64
}

type DocumentRow struct {
	ID         int
	Path       string
	Filename   string
	Source     string
	Hash       string
	Status     string
	Error      string
	ReceivedAt string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
