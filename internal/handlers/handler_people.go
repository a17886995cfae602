package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// peopleHandler handles admins, employees and clients of an establishment.
type peopleHandler struct {
	adminService    portssvc.AdminSvcFacade
	employeeService portssvc.EmployeeSvcFacade
	clientService   portssvc.ClientSvcFacade
}

func registerPeopleRoutes(est *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := &peopleHandler{
		adminService:    services.Admin,
		employeeService: services.Employee,
		clientService:   services.Client,
	}

	admins := est.Group("/admins")
	{
		admins.GET("", h.listAdmins)
		admins.POST("", h.createAdmin)
		admins.GET("/:id", h.getAdmin)
		admins.PUT("/:id", h.updateAdmin)
		admins.DELETE("/:id", h.deleteAdmin)
	}

	employees := est.Group("/employees")
	{
		employees.GET("", h.listEmployees)
		employees.POST("", h.createEmployee)
		employees.GET("/:id", h.getEmployee)
		employees.PUT("/:id", h.updateEmployee)
		employees.DELETE("/:id", h.deleteEmployee)
	}
	est.GET("/services/:id/employees", h.listEmployeesByService)

	clients := est.Group("/clients")
	{
		clients.GET("", h.listClients)
		clients.POST("", h.createClient)
		clients.POST("/join", h.joinEstablishment)
		clients.GET("/:id", h.getClient)
		clients.PUT("/:id", h.updateClient)
		clients.DELETE("/:id", h.deleteClient)
	}
}

// listAdmins godoc
// @Summary List administrators
// @Tags admins
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Admin]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/admins [get]
func (h *peopleHandler) listAdmins(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListParams
	if !bindQuery(c, &params) {
		return
	}
	admins, next, err := h.adminService.ListAdmins(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list admins")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(admins, next))
}

// createAdmin godoc
// @Summary Create an administrator
// @Description Creates an admin profile and, when an email and password are given, its login.
// @Tags admins
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   admin body dto.CreateAdminRequest true "Admin details"
// @Success 201 {object} domain.Admin
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/admins [post]
func (h *peopleHandler) createAdmin(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.adminService.CreateAdmin(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create admin")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Admin created", slog.String("admin_id", admin.ID))
	c.JSON(http.StatusCreated, admin)
}

// getAdmin godoc
// @Summary Get an administrator
// @Tags admins
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Admin ID"
// @Success 200 {object} domain.Admin
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/admins/{id} [get]
func (h *peopleHandler) getAdmin(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	admin, err := h.adminService.GetAdmin(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve admin")
		return
	}
	c.JSON(http.StatusOK, admin)
}

// updateAdmin godoc
// @Summary Update an administrator
// @Tags admins
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Admin ID"
// @Param   admin body dto.UpdateAdminRequest true "Fields to update"
// @Success 200 {object} domain.Admin
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/admins/{id} [put]
func (h *peopleHandler) updateAdmin(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateAdminRequest
	if !bindJSON(c, &req) {
		return
	}
	admin, err := h.adminService.UpdateAdmin(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update admin")
		return
	}
	c.JSON(http.StatusOK, admin)
}

// deleteAdmin godoc
// @Summary Delete an administrator
// @Tags admins
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Admin ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Last administrator"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/admins/{id} [delete]
func (h *peopleHandler) deleteAdmin(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.adminService.DeleteAdmin(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete admin")
		return
	}
	c.Status(http.StatusNoContent)
}

// listEmployees godoc
// @Summary List employees
// @Tags employees
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Param   active query bool false "Only active employees"
// @Success 200 {object} dto.ListResponse[domain.Employee]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/employees [get]
func (h *peopleHandler) listEmployees(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListEmployeesParams
	if !bindQuery(c, &params) {
		return
	}
	employees, next, err := h.employeeService.ListEmployees(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(employees, next))
}

// createEmployee godoc
// @Summary Create an employee
// @Tags employees
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   employee body dto.CreateEmployeeRequest true "Employee details"
// @Success 201 {object} domain.Employee
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/employees [post]
func (h *peopleHandler) createEmployee(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employeeService.CreateEmployee(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create employee")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Employee created", slog.String("employee_id", employee.ID))
	c.JSON(http.StatusCreated, employee)
}

// getEmployee godoc
// @Summary Get an employee
// @Tags employees
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Employee ID"
// @Success 200 {object} domain.Employee
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/employees/{id} [get]
func (h *peopleHandler) getEmployee(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	employee, err := h.employeeService.GetEmployee(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve employee")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// updateEmployee godoc
// @Summary Update an employee
// @Tags employees
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Employee ID"
// @Param   employee body dto.UpdateEmployeeRequest true "Fields to update"
// @Success 200 {object} domain.Employee
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/employees/{id} [put]
func (h *peopleHandler) updateEmployee(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}
	employee, err := h.employeeService.UpdateEmployee(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update employee")
		return
	}
	c.JSON(http.StatusOK, employee)
}

// deleteEmployee godoc
// @Summary Delete an employee
// @Tags employees
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Employee ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Employee has appointments"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/employees/{id} [delete]
func (h *peopleHandler) deleteEmployee(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.employeeService.DeleteEmployee(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete employee")
		return
	}
	c.Status(http.StatusNoContent)
}

// listEmployeesByService godoc
// @Summary Employees able to perform a service
// @Tags employees
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Service ID"
// @Success 200 {object} dto.ListResponse[domain.Employee]
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/services/{id}/employees [get]
func (h *peopleHandler) listEmployeesByService(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	employees, err := h.employeeService.ListEmployeesByService(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to list employees")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(employees, ""))
}

// listClients godoc
// @Summary List clients
// @Description Staff see every client. A client sees only their own record.
// @Tags clients
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Success 200 {object} dto.ListResponse[domain.Client]
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/clients [get]
func (h *peopleHandler) listClients(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var params dto.ListClientsParams
	if !bindQuery(c, &params) {
		return
	}
	clients, next, err := h.clientService.ListClients(c.Request.Context(), s.establishmentID, s.userID, params)
	if err != nil {
		respondError(c, err, "Failed to list clients")
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(clients, next))
}

// createClient godoc
// @Summary Create a client record
// @Tags clients
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} domain.Client
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Plan limit reached"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/clients [post]
func (h *peopleHandler) createClient(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.CreateClient(c.Request.Context(), s.establishmentID, req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to create client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// joinEstablishment godoc
// @Summary Join an establishment as a client
// @Description Links the caller's client login to the establishment, reusing a front-desk record with the same email or phone.
// @Tags clients
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   client body dto.JoinEstablishmentRequest true "Contact details"
// @Success 200 {object} domain.Client
// @Failure 403 {object} ErrorResponse "Caller is not a client account"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/clients/join [post]
func (h *peopleHandler) joinEstablishment(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.JoinEstablishmentRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.JoinEstablishment(c.Request.Context(), s.establishmentID, s.userID, req)
	if err != nil {
		respondError(c, err, "Failed to join establishment")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Client joined establishment",
		slog.String("establishment_id", s.establishmentID), slog.String("client_id", client.ID))
	c.JSON(http.StatusOK, client)
}

// getClient godoc
// @Summary Get a client
// @Tags clients
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Client ID"
// @Success 200 {object} domain.Client
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/clients/{id} [get]
func (h *peopleHandler) getClient(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	client, err := h.clientService.GetClient(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// updateClient godoc
// @Summary Update a client
// @Tags clients
// @Accept  json
// @Produce  json
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Client ID"
// @Param   client body dto.UpdateClientRequest true "Fields to update"
// @Success 200 {object} domain.Client
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /establishments/{establishment_id}/clients/{id} [put]
func (h *peopleHandler) updateClient(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	var req dto.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.UpdateClient(c.Request.Context(), s.establishmentID, c.Param("id"), req, s.userID)
	if err != nil {
		respondError(c, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// deleteClient godoc
// @Summary Delete a client
// @Tags clients
// @Param   establishment_id path string true "Establishment ID"
// @Param   id path string true "Client ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Client has appointments"
// @Security BearerAuth
// @Router /establishments/{establishment_id}/clients/{id} [delete]
func (h *peopleHandler) deleteClient(c *gin.Context) {
	s, ok := tenantScope(c)
	if !ok {
		return
	}
	if err := h.clientService.DeleteClient(c.Request.Context(), s.establishmentID, c.Param("id"), s.userID); err != nil {
		respondError(c, err, "Failed to delete client")
		return
	}
	c.Status(http.StatusNoContent)
}
