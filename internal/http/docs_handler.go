package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Docs maneja GET /api/docs con la documentación estática de la API.
func Docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(docsPage))
}

const docsPage = `<html>
  <head>
    <title>API Documentation</title>
    <style>
      body { font-family: Arial, sans-serif; padding: 20px; background: #f4f4f4; }
      h1 { color: #333; }
      pre { background: #fff; padding: 15px; border: 1px solid #ccc; overflow-x: auto; }
      code { color: #c7254e; background-color: #f9f2f4; padding: 2px 4px; border-radius: 4px; }
    </style>
  </head>
  <body>
    <h1>API Documentation</h1>

    <h2>User Registration</h2>
    <pre>
    POST /api/register
    Body:
    {
      "name": "Joao",
      "email": "joao@email.com",
      "password": "secret123",
      "phone": "+5511999999999",
      "access": "Admin",
      "age": 30
    }
    </pre>

    <h2>Login</h2>
    <pre>
    POST /api/login
    Body:
    {
      "email": "joao@email.com",
      "password": "secret123"
    }
    </pre>

    <h2>Password Recovery</h2>
    <pre>
    POST /api/recover-password
    Body:
    {
      "email": "joao@email.com"
    }
    </pre>

    <h2>Password Reset</h2>
    <pre>
    POST /api/reset-password
    Body:
    {
      "token": "&lt;token from the emailed link&gt;",
      "password": "newsecret123"
    }
    </pre>

    <h2>Other Routes</h2>
    <ul>
      <li><code>GET /api/me</code> (requires token)</li>
    </ul>

    <p>Protected endpoints expect the JWT in the header:</p>
    <pre>
Authorization: Bearer &lt;token&gt;
    </pre>
  </body>
</html>
`
