package cdm

import "encoding/json"

// ChangeProposal is one upsert of one aspect of one entity.
type ChangeProposal struct {
	EntityType string
	EntityURN  string
	ChangeType ChangeType
	AspectName string
	Aspect     Aspect
}

// NewUpsert builds an UPSERT proposal; the aspect name comes from the aspect.
func NewUpsert(entityType, entityURN string, aspect Aspect) *ChangeProposal {
	return &ChangeProposal{
		EntityType: entityType,
		EntityURN:  entityURN,
		ChangeType: ChangeTypeUpsert,
		AspectName: aspect.AspectName(),
		Aspect:     aspect,
	}
}

// WorkUnit is the unit handed to the ingestion runtime. Replaying a work unit
// is a no-op upsert.
type WorkUnit struct {
	ID       string
	Proposal *ChangeProposal
}

// NewWorkUnit wraps a proposal with its platform-scoped id.
func NewWorkUnit(platform string, p *ChangeProposal) *WorkUnit {
	return &WorkUnit{
		ID:       WorkUnitID(platform, p.EntityURN, p.AspectName),
		Proposal: p,
	}
}

type workUnitJSON struct {
	ID         string     `json:"id"`
	EntityType string     `json:"entityType"`
	EntityURN  string     `json:"entityUrn"`
	ChangeType ChangeType `json:"changeType"`
	AspectName string     `json:"aspectName"`
	Aspect     Aspect     `json:"aspect"`
}

// MarshalJSON flattens the proposal into the work unit envelope.
func (w *WorkUnit) MarshalJSON() ([]byte, error) {
	out := workUnitJSON{ID: w.ID}
	if p := w.Proposal; p != nil {
		out.EntityType = p.EntityType
		out.EntityURN = p.EntityURN
		out.ChangeType = p.ChangeType
		out.AspectName = p.AspectName
		out.Aspect = p.Aspect
	}
	return json.Marshal(out)
}

// AspectJSON encodes only the aspect payload.
func (w *WorkUnit) AspectJSON() ([]byte, error) {
	if w.Proposal == nil || w.Proposal.Aspect == nil {
		return []byte("null"), nil
	}
	return json.Marshal(w.Proposal.Aspect)
}
