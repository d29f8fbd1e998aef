package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"notaryregistry/auth"
	"notaryregistry/document"
)

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.Password == "" {
		return newAPIError(http.StatusBadRequest, msgCredsRequired, nil)
	}

	result, err := s.authService.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

func (s *Server) handleMe(c echo.Context) error {
	p, ok := auth.PrincipalFrom(c.Request().Context())
	if !ok {
		return auth.ErrUnauthenticated
	}

	user, err := s.authService.GetUserByID(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: toUserResponse(*user)})
}

func (s *Server) handleListDocuments(c echo.Context) error {
	docs, err := s.documentService.List(c.Request().Context(), document.Filter{
		Search: c.QueryParam("search"),
		Type:   c.QueryParam("type"),
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	resp := documentsResponse{Documents: make([]documentResponse, 0, len(docs))}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(d))
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateDocument(c echo.Context) error {
	p, ok := auth.PrincipalFrom(c.Request().Context())
	if !ok {
		return auth.ErrUnauthenticated
	}
	if err := auth.RequireRole(p, auth.DocumentWriters...); err != nil {
		return newAPIError(http.StatusForbidden, msgNotaryOnly, err)
	}

	var req createDocumentRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}

	created, err := s.documentService.Create(c.Request().Context(), req.params(p.UserID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createDocumentResponse{
		Success:  true,
		Document: toCreatedResponse(created),
	})
}

func (s *Server) handleActivity(c echo.Context) error {
	p, ok := auth.PrincipalFrom(c.Request().Context())
	if !ok {
		return auth.ErrUnauthenticated
	}

	records, err := s.activityService.History(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}

	resp := activitiesResponse{Activities: make([]activityResponse, 0, len(records))}
	for _, r := range records {
		resp.Activities = append(resp.Activities, toActivityResponse(r))
	}
	return c.JSON(http.StatusOK, resp)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst zero.
func decodeBody(c echo.Context, dst any) error {
	err := json.NewDecoder(c.Request().Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return newAPIError(http.StatusBadRequest, msgBadBody, err)
}
