package handler

import (
	"sndot/internal/donor/models"
	"sndot/internal/donor/service"
)

// registrationRequest is the body of POST /donors and PUT /donors/{id}.
// Donor values stay untyped; the validation chain decides what they mean.
type registrationRequest struct {
	Donor  models.Fields         `json:"donor"`
	Intent *models.IntentPayload `json:"intent,omitempty"`
}

type registrationResponse struct {
	Donor   *models.Donor          `json:"donor"`
	Intent  *models.DonationIntent `json:"intent,omitempty"`
	Created bool                   `json:"created"`
	Updated bool                   `json:"updated"`
}

type listResponse struct {
	Donors []*models.Donor `json:"donors"`
	Count  int             `json:"count"`
}

type organsResponse struct {
	Organs []*models.Organ `json:"organs"`
}

func toResponse(reg *service.Registration) registrationResponse {
	return registrationResponse{
		Donor:   reg.Donor,
		Intent:  reg.Intent,
		Created: reg.Created,
		Updated: reg.Updated,
	}
}
