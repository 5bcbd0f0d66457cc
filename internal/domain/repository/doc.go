// Package repository define las interfaces de repositorio de dominio.
//
// Estas interfaces representan contratos de negocio, independientes del
// almacenamiento subyacente (PostgreSQL o memoria).
//
// Las implementaciones concretas viven en internal/store/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│      session / verify / http controllers            │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│  UserRepository, ImageRepository, HistoryRepository │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	               ┌────────┴────────┐
//	               ▼                 ▼
//	        ┌─────────────┐   ┌─────────────┐
//	        │  store/pg   │   │ store/memory│
//	        └─────────────┘   └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
