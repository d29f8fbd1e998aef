package main

import (
	"notaryregistry/activity"
	"notaryregistry/auth"
	"notaryregistry/document"
	"notaryregistry/isotime"
)

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	Phone    *string `json:"phone"`
	Region   *string `json:"region"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
		Phone:    u.Phone,
		Region:   u.Region,
	}
}

type documentResponse struct {
	ID               int64   `json:"id"`
	Number           string  `json:"number"`
	Type             string  `json:"type"`
	Date             string  `json:"date"`
	RegistrationDate string  `json:"registration_date"`
	Status           string  `json:"status"`
	Party1Name       string  `json:"party1_name"`
	Party1Passport   string  `json:"party1_passport"`
	Party2Name       *string `json:"party2_name"`
	Party2Passport   *string `json:"party2_passport"`
	Subject          string  `json:"subject"`
	Notes            *string `json:"notes"`
	CreatedByName    *string `json:"created_by_name"`
}

type documentsResponse struct {
	Documents []documentResponse `json:"documents"`
}

func toDocumentResponse(d document.Document) documentResponse {
	return documentResponse{
		ID:               d.ID,
		Number:           d.Number,
		Type:             d.Type,
		Date:             isotime.FormatDate(d.Date),
		RegistrationDate: isotime.Format(d.RegistrationDate),
		Status:           d.Status,
		Party1Name:       d.Party1Name,
		Party1Passport:   d.Party1Passport,
		Party2Name:       d.Party2Name,
		Party2Passport:   d.Party2Passport,
		Subject:          d.Subject,
		Notes:            d.Notes,
		CreatedByName:    d.CreatedByName,
	}
}

type createDocumentRequest struct {
	DocumentType   string  `json:"document_type"`
	DocumentDate   string  `json:"document_date"`
	Party1Name     string  `json:"party1_name"`
	Party1Passport string  `json:"party1_passport"`
	Party2Name     *string `json:"party2_name"`
	Party2Passport *string `json:"party2_passport"`
	Subject        string  `json:"subject"`
	Notes          *string `json:"notes"`
}

func (r createDocumentRequest) params(createdBy int64) document.CreateParams {
	return document.CreateParams{
		DocumentType:   r.DocumentType,
		DocumentDate:   r.DocumentDate,
		Party1Name:     r.Party1Name,
		Party1Passport: r.Party1Passport,
		Party2Name:     r.Party2Name,
		Party2Passport: r.Party2Passport,
		Subject:        r.Subject,
		Notes:          r.Notes,
		CreatedBy:      createdBy,
	}
}

type createdResponse struct {
	ID               int64  `json:"id"`
	Number           string `json:"number"`
	RegistrationDate string `json:"registration_date"`
}

type createDocumentResponse struct {
	Success  bool            `json:"success"`
	Document createdResponse `json:"document"`
}

func toCreatedResponse(c document.Created) createdResponse {
	return createdResponse{
		ID:               c.ID,
		Number:           c.Number,
		RegistrationDate: isotime.Format(c.RegistrationDate),
	}
}

type activityResponse struct {
	ID             int64   `json:"id"`
	ActionType     string  `json:"action_type"`
	Description    string  `json:"description"`
	CreatedAt      string  `json:"created_at"`
	DocumentNumber *string `json:"document_number"`
}

type activitiesResponse struct {
	Activities []activityResponse `json:"activities"`
}

func toActivityResponse(r activity.Record) activityResponse {
	return activityResponse{
		ID:             r.ID,
		ActionType:     r.ActionType,
		Description:    r.Description,
		CreatedAt:      isotime.Format(r.CreatedAt),
		DocumentNumber: r.DocumentNumber,
	}
}
