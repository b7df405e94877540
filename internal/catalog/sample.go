package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

var sampleCategories = []string{
	"Administración General del Estado",
	"Justicia",
	"Educación",
	"Sanidad",
	"Hacienda",
	"Policía Nacional",
	"Guardia Civil",
	"Instituciones Penitenciarias",
	"Ayuntamientos y Entidades Locales",
	"Comunidades Autónomas",
}

var sampleInstructors = []string{
	"María García",
	"Carlos Rodríguez",
	"Laura Martínez",
	"Javier López",
	"Ana Sánchez",
	"David Fernández",
	"Elena Gómez",
	"Pablo Díaz",
	"Cristina Hernández",
	"Miguel Torres",
}

var sampleDurations = []string{
	"3:45", "5:20", "2:30", "4:15", "6:10", "1:55", "7:40", "2:20", "3:05", "5:50",
}

var sampleViews = []string{
	"1.2K", "3.5K", "987", "7.1K", "543", "12K", "2.3K", "5.6K", "890", "4.7K",
}

var sampleTitles = []string{
	"Derecho Constitucional para TAI",
	"Test Guardia Civil 2024",
	"Procedimiento Administrativo Común",
	"Supuestos Prácticos Trabajo Social",
	"Derecho Penal para Instituciones Penitenciarias",
	"Idiomas para Cuerpo Diplomático",
	"Preparación Guardia Urbana Barcelona",
	"Temario Oposiciones Correos",
	"Casos Prácticos Administrativo de la Seguridad Social",
	"Pruebas Físicas Policía Local",
}

// SampleSize is the number of courses produced by SampleCourses.
const SampleSize = 100

// SampleCourses returns the built-in catalog of public-exam preparation
// courses. Every call returns a fresh slice.
func SampleCourses() []Course {
	courses := make([]Course, 0, SampleSize)
	for i := 0; i < SampleSize; i++ {
		id := fmt.Sprintf("course_%d", i+1)
		courses = append(courses, Course{
			ID:         id,
			Title:      fmt.Sprintf("%s (Edición %d)", sampleTitles[i%len(sampleTitles)], i/20+1),
			Category:   sampleCategories[i%len(sampleCategories)],
			Instructor: sampleInstructors[i%len(sampleInstructors)],
			Duration:   sampleDurations[i%len(sampleDurations)],
			Thumbnail:  thumbnailURL(id),
			ViewCount:  sampleViews[i%len(sampleViews)],
		})
	}
	return courses
}

func thumbnailURL(id string) string {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "course_"))
	if err != nil {
		n = 0
	}
	return fmt.Sprintf("https://picsum.photos/id/%d/320/180", n%100+100)
}
