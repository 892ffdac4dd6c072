package models

import "time"

// Seed data installed by the seed command. All records use natural keys, so
// reinstalling them is an overwrite rather than a duplicate.

// DefaultSettings returns the settings singleton with its initial URLs.
func DefaultSettings(now time.Time) *Settings {
	return &Settings{
		Key:       SettingsApp,
		FilesURL:  "https://drive.google.com/drive/folders/1YvklLMYB8rDJYCjtbHVyy7XTfWy3tIvQ?usp=drive_link",
		GitURL:    "https://github.com/joelosiris11/jceFacturacion",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultColumns returns the five standard board lanes.
func DefaultColumns(now time.Time) []*Column {
	cols := []*Column{
		{ID: ColumnBacklog, Title: "Backlog", Color: "#94a3b8", Order: 0},
		{ID: ColumnTodo, Title: "Por Hacer", Color: "#6366f1", Order: 1},
		{ID: ColumnInProgress, Title: "En Progreso", Color: "#f59e0b", Order: 2},
		{ID: ColumnReview, Title: "En Revisión", Color: "#8b5cf6", Order: 3},
		{ID: ColumnCompleted, Title: "Completado", Color: "#10b981", Order: 4},
	}
	for _, c := range cols {
		c.CreatedAt = now
		c.UpdatedAt = now
	}
	return cols
}

// DefaultRoles returns the sixteen seeded positions.
func DefaultRoles(now time.Time) []*Role {
	roles := []*Role{
		{ID: RoleAdmin, Name: "Administrador", Icon: "👑", Description: "Control total del sistema y gestión de usuarios", Category: "Gestión", Color: "#dc2626"},
		{ID: "project-manager", Name: "Project Manager", Icon: "📊", Description: "Gestión completa de proyectos y tareas", Category: "Gestión", Color: "#6366f1"},
		{ID: "business-analyst", Name: "Analista de Negocios", Icon: "📈", Description: "Define requisitos y optimiza procesos de negocio", Category: "Análisis", Color: "#0891b2"},
		{ID: "process-researcher", Name: "Investigador de Procesos", Icon: "🔬", Description: "Analiza y mejora flujos de trabajo internos", Category: "Análisis", Color: "#0284c7"},
		{ID: "institutional-data-analyst", Name: "Analista de Datos Institucionales", Icon: "🔍", Description: "Interpreta datos para decisiones estratégicas", Category: "Análisis", Color: "#0369a1"},
		{ID: "ux-researcher", Name: "Investigador UX", Icon: "💡", Description: "Estudia el comportamiento del usuario para mejorar la experiencia", Category: "Diseño", Color: "#ea580c"},
		{ID: "service-designer", Name: "Diseñador de Servicio", Icon: "🧩", Description: "Diseña y optimiza la experiencia completa del servicio", Category: "Diseño", Color: "#f59e0b"},
		{ID: "ui-ux-designer", Name: "Diseñador UI/UX", Icon: "🎨", Description: "Crea interfaces de usuario intuitivas y atractivas", Category: "Diseño", Color: "#f97316"},
		{ID: "developer", Name: "Desarrollador", Icon: "💻", Description: "Diseña, codifica y mantiene aplicaciones de software", Category: "Desarrollo", Color: "#16a34a"},
		{ID: "compliance-specialist", Name: "Especialista en Cumplimiento Normativo", Icon: "📜", Description: "Asegura que la organización cumpla con las regulaciones", Category: "Legal y Financiero", Color: "#7c3aed"},
		{ID: "institutional-legal-advisor", Name: "Asesor Legal Institucional", Icon: "⚖️", Description: "Proporciona orientación legal y gestiona riesgos", Category: "Legal y Financiero", Color: "#9333ea"},
		{ID: "financial-advisor", Name: "Asesor Financiero", Icon: "💰", Description: "Ofrece asesoramiento sobre gestión de recursos financieros", Category: "Legal y Financiero", Color: "#a855f7"},
		{ID: "tester-functional-evaluator", Name: "Tester / Evaluador Funcional", Icon: "🧪", Description: "Realiza pruebas para asegurar la calidad del software", Category: "Calidad", Color: "#ec4899"},
		{ID: "documentation-specialist", Name: "Especialista en Documentación", Icon: "📚", Description: "Crea y gestiona la documentación técnica y de usuario", Category: "Soporte", Color: "#64748b"},
		{ID: "internal-communications-manager", Name: "Encargado de Comunicación Interna", Icon: "📢", Description: "Gestiona la comunicación efectiva dentro de la organización", Category: "Soporte", Color: "#475569"},
		{ID: "qa", Name: "Analista de Calidad (QA)", Icon: "✅", Description: "Asegura la calidad del producto a través de pruebas y procesos", Category: "Calidad", Color: "#059669"},
	}
	for _, r := range roles {
		r.IsActive = true
		r.CreatedAt = now
		r.UpdatedAt = now
	}
	return roles
}

// WelcomeTask returns the onboarding card created on an empty board.
func WelcomeTask(now time.Time) *Task {
	return &Task{
		ID:          NewTaskID(now),
		Title:       "¡Bienvenido a Kanban JCE!",
		Description: "Esta es una tarea de ejemplo. Puedes crear, editar y mover tareas entre columnas. Haz clic en una tarea para ver más detalles.",
		Status:      ColumnTodo,
		Priority:    PriorityMedium,
		Type:        TypeGeneral,
		Hours:       1,
		CreatedBy:   "sistema",
		Comments: CommentList{
			{
				ID:        NewCommentID(now),
				Text:      "Usa los comentarios para coordinar el trabajo de cada tarea.",
				Author:    "sistema",
				CreatedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
