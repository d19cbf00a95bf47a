package response

import "github.com/gofiber/fiber/v2"

// Response is the JSON envelope of every API answer.
// Code carries a machine-readable reason on circulation errors.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Success sends a 200 response
func Success(c *fiber.Ctx, message string, data any) error {
	return send(c, fiber.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created sends a 201 response
func Created(c *fiber.Ctx, message string, data any) error {
	return send(c, fiber.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Error sends an error response without a reason code
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return ErrorWithCode(c, statusCode, "", message)
}

// ErrorWithCode sends an error response carrying a reason code
func ErrorWithCode(c *fiber.Ctx, statusCode int, code, message string) error {
	return send(c, statusCode, Response{Error: message, Code: code})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// UnprocessableEntity sends a 422 for a request that breaks a circulation rule
func UnprocessableEntity(c *fiber.Ctx, code, message string) error {
	return ErrorWithCode(c, fiber.StatusUnprocessableEntity, code, message)
}

// InternalServerError sends a 500. The cause is logged by the caller, never sent.
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func send(c *fiber.Ctx, status int, body Response) error {
	return c.Status(status).JSON(body)
}
