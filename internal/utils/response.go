package utils

import "github.com/gofiber/fiber/v2"

// JSONSuccess writes {"success": true, "message": msg} merged with payload.
func JSONSuccess(c *fiber.Ctx, status int, msg string, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	if msg != "" {
		body["message"] = msg
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}
