package model

// Epreuve is an exam paper.
type Epreuve struct {
	ID                    int64    `json:"id"`
	Titre                 string   `json:"titre"`
	Description           *string  `json:"description"`
	Matiere               string   `json:"matiere"`
	Niveau                string   `json:"niveau"`
	TypeEpreuve           string   `json:"type_epreuve"`
	AnneeAcademique       string   `json:"annee_academique"`
	Professeur            *string  `json:"professeur"`
	FichierPDF            *string  `json:"fichier_pdf"`
	TailleFichier         int64    `json:"taille_fichier,omitempty"`
	TailleFichierMB       float64  `json:"taille_fichier_mb,omitempty"`
	HashFichier           string   `json:"hash_fichier,omitempty"`
	NbPages               int      `json:"nb_pages,omitempty"`
	IsApproved            bool     `json:"is_approved,omitempty"`
	UploadedBy            int64    `json:"uploaded_by,omitempty"`
	UploadedByUsername    string   `json:"uploaded_by_username,omitempty"`
	FichierURL            string   `json:"fichier_url,omitempty"`
	DownloadURL           string   `json:"download_url,omitempty"`
	PreviewURL            string   `json:"preview_url,omitempty"`
	CreatedAt             string   `json:"created_at"`
	UpdatedAt             string   `json:"updated_at"`
	NbVues                int64    `json:"nb_vues"`
	NbTelechargements     int64    `json:"nb_telechargements"`
	NoteMoyenneDifficulte *float64 `json:"note_moyenne_difficulte,omitempty"`
	NoteMoyennePertinence *float64 `json:"note_moyenne_pertinence,omitempty"`
}

// Page is a paginated list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Commentaire is a comment on an exam, possibly a reply.
type Commentaire struct {
	ID        int64         `json:"id"`
	Epreuve   int64         `json:"epreuve"`
	User      User          `json:"user"`
	Contenu   string        `json:"contenu"`
	Parent    *int64        `json:"parent"`
	CreatedAt string        `json:"created_at"`
	Replies   []Commentaire `json:"replies,omitempty"`
}

// Evaluation is a user's rating of an exam.
type Evaluation struct {
	ID             int64  `json:"id"`
	Epreuve        int64  `json:"epreuve"`
	User           int64  `json:"user"`
	NoteDifficulte int    `json:"note_difficulte"`
	NotePertinence int    `json:"note_pertinence"`
	CreatedAt      string `json:"created_at"`
}

// Recommendation is one scored item from the recommender.
type Recommendation struct {
	EpreuveID             int64    `json:"epreuve_id"`
	Score                 float64  `json:"score"`
	Titre                 string   `json:"titre"`
	Matiere               string   `json:"matiere"`
	Niveau                string   `json:"niveau"`
	TypeEpreuve           string   `json:"type_epreuve"`
	AnneeAcademique       string   `json:"annee_academique"`
	Professeur            *string  `json:"professeur"`
	NbVues                int64    `json:"nb_vues"`
	NbTelechargements     int64    `json:"nb_telechargements"`
	NoteMoyennePertinence *float64 `json:"note_moyenne_pertinence"`
}

// Epreuve converts the recommendation into an Epreuve with the fields it carries.
func (r Recommendation) Epreuve() Epreuve {
	return Epreuve{
		ID:                    r.EpreuveID,
		Titre:                 r.Titre,
		Matiere:               r.Matiere,
		Niveau:                r.Niveau,
		TypeEpreuve:           r.TypeEpreuve,
		AnneeAcademique:       r.AnneeAcademique,
		Professeur:            r.Professeur,
		NbVues:                r.NbVues,
		NbTelechargements:     r.NbTelechargements,
		NoteMoyennePertinence: r.NoteMoyennePertinence,
	}
}

// ListParams filters and paginates the exam list. Zero values are omitted.
type ListParams struct {
	Page            int
	Search          string
	Matiere         string
	Niveau          string
	TypeEpreuve     string
	AnneeAcademique string
	Ordering        string
}

// UploadInput describes a new exam paper and its PDF.
type UploadInput struct {
	Titre           string
	Matiere         string
	Niveau          string
	TypeEpreuve     string
	AnneeAcademique string
	Professeur      string
	Description     string
	FileName        string
}

// UploadResult is the backend's answer to an upload.
type UploadResult struct {
	Message string  `json:"message"`
	Epreuve Epreuve `json:"epreuve"`
}

// EpreuveUpdate is a partial update; nil fields are left unchanged.
type EpreuveUpdate struct {
	Titre           *string `json:"titre,omitempty"`
	Matiere         *string `json:"matiere,omitempty"`
	Niveau          *string `json:"niveau,omitempty"`
	TypeEpreuve     *string `json:"type_epreuve,omitempty"`
	AnneeAcademique *string `json:"annee_academique,omitempty"`
	Professeur      *string `json:"professeur,omitempty"`
	Description     *string `json:"description,omitempty"`
}

// Download is where an exam PDF can be fetched from. Exactly one of
// Location and Content is set.
type Download struct {
	Location    string
	Content     []byte
	ContentType string
}

// ModelStatus describes the recommender's active model.
type ModelStatus struct {
	Status          string             `json:"status"`
	Message         string             `json:"message,omitempty"`
	ModelVersion    string             `json:"model_version,omitempty"`
	Architecture    string             `json:"architecture,omitempty"`
	CreatedAt       string             `json:"created_at,omitempty"`
	Hyperparameters map[string]any     `json:"hyperparameters,omitempty"`
	TrainingInfo    map[string]any     `json:"training_info,omitempty"`
	Metrics         map[string]float64 `json:"metrics,omitempty"`
}

// CountBy is one bucket of a dashboard breakdown.
type CountBy struct {
	Matiere string `json:"matiere,omitempty"`
	Niveau  string `json:"niveau,omitempty"`
	Filiere string `json:"filiere,omitempty"`
	Count   int64  `json:"count"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalUsers         int64     `json:"total_users"`
	TotalEpreuves      int64     `json:"total_epreuves"`
	TotalInteractions  int64     `json:"total_interactions"`
	TotalEvaluations   int64     `json:"total_evaluations"`
	TotalCommentaires  int64     `json:"total_commentaires"`
	EpreuvesParMatiere []CountBy `json:"epreuves_par_matiere"`
	EpreuvesParNiveau  []CountBy `json:"epreuves_par_niveau"`
	TopEpreuves        []Epreuve `json:"top_epreuves"`
	UsersParFiliere    []CountBy `json:"users_par_filiere,omitempty"`
	UsersParNiveau     []CountBy `json:"users_par_niveau,omitempty"`
}

// GenerateConfig sizes a synthetic data run.
type GenerateConfig struct {
	Users        int `json:"users"`
	Epreuves     int `json:"epreuves"`
	Interactions int `json:"interactions"`
}

// GenerateResult reports what a synthetic data run created.
type GenerateResult struct {
	Message string           `json:"message"`
	Summary map[string]int64 `json:"summary"`
	Totals  map[string]int64 `json:"totals"`
}

// ExportFormat selects the admin export encoding.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)
