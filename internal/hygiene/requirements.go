package hygiene

import "github.com/Atiwari330/hub-agent-sub001/internal/contracts"

var (
	reqDealName   = contracts.HygieneRequirement{Field: contracts.FieldDealName, Label: "Deal Name"}
	reqAmount     = contracts.HygieneRequirement{Field: contracts.FieldAmount, Label: "Amount"}
	reqCloseDate  = contracts.HygieneRequirement{Field: contracts.FieldCloseDate, Label: "Close Date"}
	reqOwner      = contracts.HygieneRequirement{Field: contracts.FieldOwner, Label: "Deal Owner"}
	reqLeadSource = contracts.HygieneRequirement{Field: contracts.FieldLeadSource, Label: "Lead Source"}
	reqProducts   = contracts.HygieneRequirement{Field: contracts.FieldProducts, Label: "Products"}
	reqSubstage   = contracts.HygieneRequirement{Field: contracts.FieldSubstage, Label: "Deal Substage"}
	reqDealType   = contracts.HygieneRequirement{Field: contracts.FieldDealType, Label: "Deal Type"}
)

// DefaultRequirements returns the required-field list of each pipeline, in display order
// ⭐ SSOT: overridable per pipeline through the rules file
func DefaultRequirements() map[contracts.PipelineKind][]contracts.HygieneRequirement {
	return map[contracts.PipelineKind][]contracts.HygieneRequirement{
		contracts.PipelineSales: {
			reqDealName, reqAmount, reqCloseDate, reqOwner, reqLeadSource, reqProducts, reqSubstage,
		},
		contracts.PipelineUpsell: {
			reqDealName, reqAmount, reqCloseDate, reqOwner, reqProducts, reqDealType,
		},
		contracts.PipelineCustomerSuccess: {
			reqDealName, reqCloseDate, reqOwner, reqDealType,
		},
	}
}
