package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// Los valores de c.Params/c.Query apuntan al buffer de fasthttp, que se reutiliza entre
// peticiones. Todo lo que cruza hacia el motor se copia.

func paramID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func query(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.Query(key))
}
