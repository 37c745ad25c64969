package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/wellness_report/app/display/internal/data"
	"github.com/iWorld-y/wellness_report/app/display/internal/service"
	"github.com/iWorld-y/wellness_report/app/display/internal/usecase"
)

// ProviderSet 是展示服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,

	// Analyzer providers
	NewAnalyzerEngine,
	NewAnalyzer,
	NewCatalog,
	NewRenderer,

	// Data providers
	data.NewData,
	data.NewHistoryRepo,

	// UseCase providers
	usecase.NewReportUseCase,
	usecase.NewAdminUseCase,

	// Service providers
	service.NewWellnessService,
)
