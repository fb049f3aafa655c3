package models

type LiveStats struct {
	CFPBComplaints int64  `json:"cfpbComplaints" yaml:"cfpb_complaints"`
	NHTSARecalls   int64  `json:"nhtsaRecalls" yaml:"nhtsa_recalls"`
	CPSCViolations int64  `json:"cpscViolations" yaml:"cpsc_violations"`
	FTCComplaints  int64  `json:"ftcComplaints" yaml:"ftc_complaints"`
	WorstSector    string `json:"worstSector" yaml:"worst_sector"`
}

// SectorScore is a sector's quality-decline score; higher is worse.
type SectorScore struct {
	Sector     string `json:"sector" yaml:"sector"`
	Score      int    `json:"score" yaml:"score"`
	Complaints int64  `json:"complaints" yaml:"complaints"`
}

type CompanyRanking struct {
	Name       string `json:"name" yaml:"name"`
	Grade      string `json:"grade" yaml:"grade"`
	Complaints int64  `json:"complaints" yaml:"complaints"`
	Recalls    int64  `json:"recalls" yaml:"recalls"`
	Sector     string `json:"sector" yaml:"sector"`
}

type TimelineEvent struct {
	Company  string `json:"company" yaml:"company"`
	Issue    string `json:"issue" yaml:"issue"`
	Date     string `json:"date" yaml:"date"`
	Source   string `json:"source" yaml:"source"`
	Severity string `json:"severity" yaml:"severity"`
	Units    int64  `json:"units" yaml:"units"`
}
