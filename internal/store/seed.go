package store

import "github.com/ppiankov/reliefdesk/internal/model"

// DemoClaimantID owns the first demo claim and is the default claimant identity
const DemoClaimantID = "CLM-1001"

// DemoClaims returns the claims a fresh portal starts with
func DemoClaims() []model.Claim {
	return []model.Claim{
		{
			ID:             "BT-101",
			ClaimantID:     DemoClaimantID,
			Name:           "Rajesh Kumar",
			IdentityNumber: "456789012345",
			Phone:          "9876543210",
			CaseType:       model.CasePoAAct,
			Status:         model.StatusPending,
			Amount:         82500,
			AppliedDate:    "2024-05-12",
			BankAccount:    "3045678912",
			IFSC:           "SBIN0001",
			FIRNumber:      "FIR/2024/22",
			Statement:      "Physical assault and denial of access to community water source by members of local dominant community.",
			Verification: &model.VerificationResult{
				Verified:      true,
				Score:         94,
				Remarks:       "High semantic alignment with CCTNS FIR narrative.",
				MatchedFields: []string{"Identity", "Incident Date", "Statute Section"},
			},
		},
		{
			ID:             "BT-102",
			ClaimantID:     "CLM-1002",
			Name:           "Sunita Meena",
			IdentityNumber: "112233445566",
			Phone:          "9123456789",
			CaseType:       model.CaseInterCasteMarriage,
			Status:         model.StatusPending,
			Amount:         250000,
			AppliedDate:    "2024-05-14",
			BankAccount:    "9988776655",
			IFSC:           "HDFC0001",
			Statement:      "Applying for incentive grant following legal marriage ceremony on 10th March 2024.",
			Verification: &model.VerificationResult{
				Verified:      true,
				Score:         88,
				Remarks:       "Marriage certificate records verified against municipal database.",
				MatchedFields: []string{"Spouse Aadhaar", "Date of Marriage"},
			},
		},
		{
			ID:             "BT-103",
			ClaimantID:     "CLM-1003",
			Name:           "Anil Paswan",
			IdentityNumber: "778899001122",
			Phone:          "8877665544",
			CaseType:       model.CasePoAAct,
			Status:         model.StatusDisbursed,
			Amount:         120000,
			AppliedDate:    "2024-04-20",
			BankAccount:    "1122334455",
			IFSC:           "ICIC0001",
			FIRNumber:      "FIR/2024/09",
			Verification: &model.VerificationResult{
				Verified:      false,
				Score:         42,
				Remarks:       "Flagged: Semantic mismatch between FIR sections and victim narrative.",
				MatchedFields: []string{"Identity"},
			},
		},
	}
}

// DemoGrievances returns the tickets a fresh portal starts with
func DemoGrievances() []model.Grievance {
	return []model.Grievance{
		{
			ID:          "GR-1024",
			ClaimID:     "BT-101",
			Subject:     "Delay in DBT Disbursement",
			Description: "Application sanctioned 5 days ago but amount not received.",
			Status:      model.GrievanceInProgress,
			CreatedAt:   "2024-05-10",
		},
		{
			ID:          "GR-1011",
			ClaimID:     "BT-103",
			Subject:     "Aadhaar Verification Failed",
			Description: "System kept showing Aadhaar mismatch.",
			Status:      model.GrievanceResolved,
			CreatedAt:   "2024-05-02",
		},
	}
}

// Seed loads the demo claims and grievances in display order without
// emitting notifications
func Seed(s *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range DemoClaims() {
		if !s.hasClaim(c.ID) {
			s.claims = append(s.claims, cloneClaim(c))
		}
	}
	for _, g := range DemoGrievances() {
		if !s.hasGrievance(g.ID) {
			s.grievances = append(s.grievances, g)
		}
	}
}
