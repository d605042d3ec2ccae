package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tweet_curator/generator"
	"tweet_curator/history"
	"tweet_curator/models"
)

// handleGeneration runs one generation. Request contexts override the server
// catalog per tag. The run is detached from the client connection so an aborted
// request still ends up in the history.
func (s *Server) handleGeneration(c *gin.Context) {
	var body models.GenerationRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	contexts := s.contexts.All()
	for tag, text := range body.Contexts {
		contexts[tag] = text
	}
	req := generator.Request{
		Instruction: body.InputText,
		Tags:        body.Tags,
		Contexts:    contexts,
		Items:       body.Tweets,
	}

	ctx := context.WithoutCancel(c.Request.Context())
	res, _, err := s.pipeline.Generate(ctx, req)
	var unknown *generator.UnknownTagError
	if errors.As(err, &unknown) {
		errorJSON(c, http.StatusBadRequest, unknown.Error())
		return
	}
	if err != nil {
		s.log.Error("generation request failed", "error", err)
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}

	entry := history.NewEntry(res, generator.SelectedTags(body.Tags), body.Tweets, s.now())
	if err := s.history.Append(ctx, entry); err != nil {
		s.log.Error("history append failed", "id", entry.ID, "error", err)
	} else {
		c.Header("X-History-Id", entry.ID)
	}
	c.JSON(res.HTTPStatus(), res)
}
