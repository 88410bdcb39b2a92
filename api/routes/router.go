package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheWizardo/InventoryPro/api/controllers"
	"github.com/TheWizardo/InventoryPro/api/middleware"
	"github.com/TheWizardo/InventoryPro/internal/assembly"
	"github.com/TheWizardo/InventoryPro/internal/employees"
	"github.com/TheWizardo/InventoryPro/internal/inventory"
	"github.com/TheWizardo/InventoryPro/internal/inventorylog"
	"github.com/TheWizardo/InventoryPro/internal/projects"
	"github.com/TheWizardo/InventoryPro/pkg/config"
	"github.com/TheWizardo/InventoryPro/pkg/db"
	"github.com/TheWizardo/InventoryPro/pkg/logger"
	"github.com/TheWizardo/InventoryPro/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	inventoryService inventory.Service,
	employeeService employees.Service,
	projectService projects.Service,
	assemblyService assembly.Service,
	logService inventorylog.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.Ping())

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(inventoryService, logg))
			r.Post("/", controllers.InventoryCreate(inventoryService, logg))
			r.Post("/many", controllers.InventoryGetMany(inventoryService, logg))
			r.Get("/vendors", controllers.InventoryVendors(inventoryService, logg))
			r.Post("/adjust-stock", controllers.InventoryAdjustStock(inventoryService, logg))
			r.Post("/override-stock", controllers.InventoryOverrideStock(inventoryService, logg))
			r.Post("/predict-stock", controllers.InventoryPredictStock(inventoryService, logg))
			r.Route("/{itemID}", func(r chi.Router) {
				r.Get("/", controllers.InventoryGet(inventoryService, logg))
				r.Patch("/", controllers.InventoryUpdate(inventoryService, logg))
				r.Delete("/", controllers.InventoryDelete(inventoryService, logg))
				r.Get("/flatten", controllers.InventoryFlatten(inventoryService, logg))
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.EmployeeList(employeeService, logg))
			r.Post("/", controllers.EmployeeCreate(employeeService, logg))
			r.Route("/{employeeID}", func(r chi.Router) {
				r.Get("/", controllers.EmployeeGet(employeeService, logg))
				r.Patch("/", controllers.EmployeeUpdate(employeeService, logg))
				r.Delete("/", controllers.EmployeeDelete(employeeService, logg))
				r.Get("/assemblies", controllers.AssembliesByEmployee(assemblyService, logg))
			})
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectList(projectService, logg))
			r.Post("/", controllers.ProjectCreate(projectService, logg))
			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", controllers.ProjectGet(projectService, logg))
				r.Patch("/", controllers.ProjectUpdate(projectService, logg))
				r.Delete("/", controllers.ProjectDelete(projectService, logg))
				r.Get("/progress", controllers.ProjectProgress(projectService, logg))
				r.Get("/assemblies", controllers.AssembliesByProject(assemblyService, logg))
			})
		})

		r.Route("/assemblies", func(r chi.Router) {
			r.Get("/", controllers.AssemblyList(assemblyService, logg))
			r.Post("/", controllers.AssemblyCreate(assemblyService, logg))
			r.Route("/{assemblyID}", func(r chi.Router) {
				r.Get("/", controllers.AssemblyGet(assemblyService, logg))
				r.Delete("/", controllers.AssemblyDelete(assemblyService, logg))
			})
		})

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", controllers.LogList(logService, logg))
			r.Post("/", controllers.LogCreate(logService, logg))
			r.Route("/{entryID}", func(r chi.Router) {
				r.Get("/", controllers.LogGet(logService, logg))
				r.Delete("/", controllers.LogDelete(logService, logg))
			})
		})
	})

	return r
}
